package hashing

import "testing"

func TestFileIDDeterministic(t *testing.T) {
	data := []byte("Subjects were randomized 1:1 to drug A 10mg vs placebo.")

	first := FileID(data)
	second := FileID(data)

	if first != second {
		t.Errorf("FileID not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars for sha256, got %d", len(first))
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	if CacheKey([]byte("abc")) != CacheKey([]byte("abc")) {
		t.Error("CacheKey not deterministic")
	}
	if len(CacheKey([]byte("abc"))) != 32 {
		t.Errorf("expected 32 hex chars for md5, got %d", len(CacheKey([]byte("abc"))))
	}
}

func TestNoCollisionsOnCorpus(t *testing.T) {
	corpus := []string{
		"",
		"a",
		"b",
		"ab",
		"ba",
		"randomized controlled trial",
		"randomized controlled trial ", // trailing space matters
		"队列研究",
		"病例对照研究",
	}

	seenFile := make(map[string]string)
	seenKey := make(map[string]string)
	for _, s := range corpus {
		id := FileID([]byte(s))
		if prev, ok := seenFile[id]; ok {
			t.Errorf("FileID collision between %q and %q", prev, s)
		}
		seenFile[id] = s

		key := TextCacheKey(s)
		if prev, ok := seenKey[key]; ok {
			t.Errorf("TextCacheKey collision between %q and %q", prev, s)
		}
		seenKey[key] = s
	}
}

func TestTextCacheKeyMatchesBytes(t *testing.T) {
	if TextCacheKey("hello") != CacheKey([]byte("hello")) {
		t.Error("TextCacheKey should hash the UTF-8 bytes of the string")
	}
}
