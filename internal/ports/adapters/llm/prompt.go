package llm

import (
	"strings"
	"text/template"

	"github.com/forPelevin/dmcut/internal/types"
)

var promptTmpl = template.Must(template.New("prompt").Parse(`你是一位非常熟悉{{.Group}}的资深剪辑UP主。现在需要基于一段{{.Broadcast}}的高能片段，生成直播精彩片段的元数据。

### 视频信息
- 直播类型: {{.Broadcast}}
- 出场成员: {{.Members}}
- 原始文件: {{.Source}}
- 片段时间: {{.Timestamp}}

### 字幕内容 (成员发言或对话)
{{.Subtitles}}

### 弹幕反应 (观众情绪或反应)
{{.Chat}}

### 任务要求
请分析这个片段，**只输出一个纯净的 JSON 对象**，不要包含 markdown 标记或任何解释性文字。

JSON 字段生成策略：
1. **title**: 标题可以用夸张吸引眼球的词汇，如'震惊!'、'绷不住了!'、'名场面!'等开头吸引点击。
2. **cover_text_1**: 封面视觉核心，提炼最强冲突点，限制 **3-10个字**。
3. **cover_text_2**: 封面辅助吐槽，对主字的补充或反转，限制 **3-10个字**。

### JSON 输出格式
{
  "title": "情绪/玩梗前缀+具体事件的二段式标题",
  "summary": "用粉丝视角的口吻概括这个片段发生了什么（1-2句）",
  "cover_text_1": "封面核心大字(3-10字)",
  "cover_text_2": "封面补充小字(3-10字)",
  "highlight_reason": "为什么这是高光片段，观众为何有这样的弹幕反应"
}
`))

// DescribeBroadcast names the kind of stream from who appeared: a solo
// stream for one member, a group stream for several.
func DescribeBroadcast(group string, members []string) string {
	if group == "" {
		group = "主播"
	}
	switch len(members) {
	case 0:
		return group + "直播"
	case 1:
		return members[0] + "单播"
	default:
		return group + "团播"
	}
}

func buildPrompt(req types.MetadataRequest) (string, error) {
	members := "未知"
	if len(req.Members) > 0 {
		members = strings.Join(req.Members, ", ")
	}
	group := req.Broadcast
	if group == "" {
		group = "这位主播"
	}
	var b strings.Builder
	err := promptTmpl.Execute(&b, map[string]string{
		"Group":     group,
		"Broadcast": DescribeBroadcast(req.Broadcast, req.Members),
		"Members":   members,
		"Source":    req.SourceName,
		"Timestamp": req.Timestamp,
		"Subtitles": req.Subtitles,
		"Chat":      req.Chat,
	})
	return b.String(), err
}
