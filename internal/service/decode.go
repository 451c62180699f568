package service

import (
	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// The LLM's JSON output is untyped and every key is optional. These decoders
// turn the raw map into fully-populated records with defaults, so nothing
// downstream ever touches map[string]any.

func decodeTurnAnalysis(data map[string]any) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		SuggestedReplies: getStringSlice(data, "suggestedReplies"),
		ExtractedInfo:    decodeExtractedInfo(getMap(data, "extractedInfo")),
		MissingInfo:      getStringSlice(data, "missingInfo"),
		CanQuote:         getBoolValue(data, "canQuote"),
		QuickTags:        getStringSlice(data, "quickTags"),
	}

	// Price fields only exist when a quote is feasible, regardless of what
	// the model returned.
	if result.CanQuote {
		estimate := getMap(data, "priceEstimate")
		result.PriceMin = getInt(estimate, "min")
		result.PriceMax = getInt(estimate, "max")
		result.PriceBasis = getString(estimate, "basis")
	}

	return result
}

func decodeOneShotAnalysis(data map[string]any) *domain.OneShotAnalysisResponse {
	result := &domain.OneShotAnalysisResponse{
		Confidence:     getFloatValue(data, "confidence"),
		ExtractedInfo:  decodeExtractedInfo(getMap(data, "extractedInfo")),
		MissingInfo:    getStringSlice(data, "missingInfo"),
		SuggestedReply: getStringValue(data, "suggestedReply"),
	}

	if detected := getMap(data, "detectedType"); len(detected) > 0 {
		result.DetectedType = &domain.ServiceOffering{
			ID:               getIntValue(detected, "id"),
			Name:             getStringValue(detected, "name"),
			PriceSimple:      getInt(detected, "priceSimple"),
			PriceComplex:     getInt(detected, "priceComplex"),
			Unit:             getStringValue(detected, "unit"),
			RequiresMaterial: getBoolValue(detected, "requiresMaterial"),
			Note:             getStringValue(detected, "note"),
		}
		if result.DetectedType.Unit == "" {
			result.DetectedType.Unit = domain.UnitThousandChars
		}
	}

	estimate := getMap(data, "priceEstimate")
	result.PriceEstimate = domain.PriceEstimate{
		Min:      getIntValue(estimate, "min"),
		Max:      getIntValue(estimate, "max"),
		Basis:    getStringValue(estimate, "basis"),
		CanQuote: getBoolValue(estimate, "canQuote"),
	}

	return result
}

func decodeExtractedInfo(data map[string]any) *domain.ExtractedInfo {
	return &domain.ExtractedInfo{
		ArticleType:         getString(data, "articleType"),
		Topic:               getString(data, "topic"),
		WordCount:           getInt(data, "wordCount"),
		Deadline:            getString(data, "deadline"),
		HasReference:        getBool(data, "hasReference"),
		SpecialRequirements: getStringSlice(data, "specialRequirements"),
	}
}

func decodeRequirementSummary(data map[string]any) *domain.RequirementSummary {
	return &domain.RequirementSummary{
		ArticleType:  getStringValue(data, "articleType"),
		WordCount:    getInt(data, "wordCount"),
		Deadline:     getStringValue(data, "deadline"),
		Topic:        getStringValue(data, "topic"),
		Requirements: getStringSlice(data, "requirements"),
		Notes:        getStringValue(data, "notes"),
	}
}

// Untyped map accessors. Missing or mistyped keys yield zero values or nil,
// never a panic.

func getMap(data map[string]any, key string) map[string]any {
	if m, ok := data[key].(map[string]any); ok {
		return m
	}
	return nil
}

func getString(data map[string]any, key string) *string {
	if s, ok := data[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func getStringValue(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func getInt(data map[string]any, key string) *int {
	if f, ok := data[key].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func getIntValue(data map[string]any, key string) int {
	if n := getInt(data, key); n != nil {
		return *n
	}
	return 0
}

func getFloatValue(data map[string]any, key string) float64 {
	f, _ := data[key].(float64)
	return f
}

func getBool(data map[string]any, key string) *bool {
	if b, ok := data[key].(bool); ok {
		return &b
	}
	return nil
}

func getBoolValue(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func getStringSlice(data map[string]any, key string) []string {
	result := []string{}
	items, ok := data[key].([]any)
	if !ok {
		return result
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
