package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// Builder renders LLM prompts by interpolating the price catalog,
// conversation history and accumulated extraction state into the template
// assets. Templates use {placeholder} slots so the seller can edit them
// without knowing any template syntax.
type Builder struct {
	store *Store
}

// NewBuilder creates a prompt builder over the given template store
func NewBuilder(store *Store) *Builder {
	return &Builder{store: store}
}

// SystemPrompt returns the system message for analysis calls
func (b *Builder) SystemPrompt() (string, error) {
	return b.store.Load(TemplateSystem)
}

// BuildTurnPrompt renders the multi-turn analysis prompt. The transcript
// covers every message before the latest one; accumulated carries the fields
// already known from earlier turns.
func (b *Builder) BuildTurnPrompt(offerings []*domain.ServiceOffering, history []*domain.Message, latest string, accumulated *domain.ExtractedInfo) (string, error) {
	tmpl, err := b.store.Load(TemplateTurn)
	if err != nil {
		return "", err
	}

	return strings.NewReplacer(
		"{service_count}", strconv.Itoa(len(offerings)),
		"{price_list}", renderPriceList(offerings),
		"{history}", renderTranscript(history),
		"{latest_message}", latest,
		"{accumulated_info}", renderAccumulated(accumulated),
	).Replace(tmpl), nil
}

// BuildOneShotPrompt renders the single-message analysis prompt
func (b *Builder) BuildOneShotPrompt(offerings []*domain.ServiceOffering, message string) (string, error) {
	tmpl, err := b.store.Load(TemplateAnalyze)
	if err != nil {
		return "", err
	}

	return strings.NewReplacer(
		"{service_count}", strconv.Itoa(len(offerings)),
		"{price_list}", renderPriceList(offerings),
		"{message}", message,
	).Replace(tmpl), nil
}

// BuildSummaryPrompt renders the requirement-digest request over a full
// transcript. The response shape is fixed, so the prompt lives in code
// rather than in an editable asset.
func (b *Builder) BuildSummaryPrompt(history []*domain.Message) string {
	return fmt.Sprintf(`你是一个代写服务的需求整理助手。以下是卖家与买家的完整对话记录，请提炼出最终的需求要点。

对话记录：
%s

请以 JSON 格式返回需求摘要，包含以下字段：
- articleType: 文章类型（字符串）
- wordCount: 字数要求（数字，未提到则为 null）
- deadline: 截止时间（字符串）
- topic: 主题（字符串）
- requirements: 特殊要求列表（字符串数组）
- notes: 其他备注（字符串）

只返回一个 JSON 对象，不要包含其他文本。`, renderTranscript(history))
}

// renderPriceList renders one line per offering:
// 名称: 简单X元/复杂Y元 /单位 (备注)
func renderPriceList(offerings []*domain.ServiceOffering) string {
	lines := make([]string, 0, len(offerings))
	for _, o := range offerings {
		line := fmt.Sprintf("%s: 简单%s元/复杂%s元 /%s",
			o.Name, priceText(o.PriceSimple), priceText(o.PriceComplex), unitLabel(o.Unit))
		if o.Note != "" {
			line += fmt.Sprintf(" (%s)", o.Note)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func priceText(price *int) string {
	if price == nil {
		return "-"
	}
	return strconv.Itoa(*price)
}

func unitLabel(unit string) string {
	switch unit {
	case domain.UnitPage:
		return "页"
	case domain.UnitMinute:
		return "分钟"
	case domain.UnitPiece:
		return "篇"
	default:
		return "千字"
	}
}

// renderTranscript renders messages chronologically as "role: content" lines
func renderTranscript(history []*domain.Message) string {
	if len(history) == 0 {
		return "（无）"
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, roleLabel(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func roleLabel(role string) string {
	if role == domain.RoleSeller {
		return "卖家"
	}
	return "买家"
}

// renderAccumulated renders the known extraction fields as bullets, or an
// explicit none-yet marker so the model knows nothing has been gathered.
func renderAccumulated(info *domain.ExtractedInfo) string {
	if info.IsEmpty() {
		return "（暂无）"
	}

	var lines []string
	if info.ArticleType != nil {
		lines = append(lines, "- 文章类型: "+*info.ArticleType)
	}
	if info.Topic != nil {
		lines = append(lines, "- 主题: "+*info.Topic)
	}
	if info.WordCount != nil {
		lines = append(lines, "- 字数: "+strconv.Itoa(*info.WordCount))
	}
	if info.Deadline != nil {
		lines = append(lines, "- 截止时间: "+*info.Deadline)
	}
	if info.HasReference != nil {
		if *info.HasReference {
			lines = append(lines, "- 参考资料: 有")
		} else {
			lines = append(lines, "- 参考资料: 无")
		}
	}
	if len(info.SpecialRequirements) > 0 {
		lines = append(lines, "- 特殊要求: "+strings.Join(info.SpecialRequirements, "；"))
	}
	return strings.Join(lines, "\n")
}
