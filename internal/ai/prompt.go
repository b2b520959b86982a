// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ai

import "fmt"

// promptTemplate is the fixed extraction instruction. The requested table
// schema is what the report builders downstream parse, so the field list
// must stay in sync with what reviewers expect in the exports.
const promptTemplate = `作为临床研究专家，请从以下文献中提取结构化研究设计信息，并输出为 Markdown 表格，包含以下字段：

| 要素 | 内容 |
|------|------|
| 研究类型 | RCT / 队列 / 病例对照 / 横断面等 |
| 是否多中心 | 是/否 |
| 是否盲法 | 单盲 / 双盲 / 开放标签 |
| 纳入/排除标准 | 简要列出 |
| 干预措施（实验组） | 药物、剂量、频率等 |
| 干预措施（对照组） | 如安慰剂/标准治疗等 |
| 患者人数 | 样本总量及分组数量 |
| 主要终点指标 | 疗效指标名称与评估方式 |
| 次要/其他终点指标 | 包括所有非主要终点的疗效观察指标，如 secondary outcomes、exploratory outcomes、其他效果评估等 |
| 关键量化指标 | 所有被用于量化分析、机制研究、建模或分组的重要变量。不限终点、不限疗效相关，如 insulin resistance, clearance 等 |
| 安全性终点指标 | 不良事件、实验室指标等 |
| 统计分析方法 | 所用统计工具和模型 |
| 临床试验注册号 | 如有请列出 |

文献内容如下：
%s
`

// buildPrompt embeds the document text into the extraction instruction.
func buildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
