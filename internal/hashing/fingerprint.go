// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package hashing

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// FileID returns the sha256 hex digest of a byte blob. It is the durable
// identity recorded in history for an uploaded file.
func FileID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CacheKey returns the md5 hex digest of a byte blob. Collisions are treated
// as identical content, which is an accepted risk for memoization keys.
func CacheKey(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// TextCacheKey returns the md5 hex digest of a text string.
func TextCacheKey(text string) string {
	return CacheKey([]byte(text))
}
