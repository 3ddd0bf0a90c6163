package services

import (
	"fmt"
	"strings"

	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
)

// incomeKeywords and expenseKeywords are the curated vocabularies used for
// substring-containment classification. Slice order is fixed; the color
// tables below rely on first-match-wins over the same stable ordering.
// Latin-script entries are stored lowercase and compared case-folded.
var incomeKeywords = []string{
	"薪資", "薪水", "工資", "獎金", "年終", "分紅",
	"投資", "股利", "股息", "利息", "租金收入",
	"獎學金", "退款", "退費", "回饋", "中獎", "彩券",
	"資遣費", "理賠", "兼職", "外快",
	"salary", "wage", "bonus", "dividend", "interest",
	"refund", "cashback", "scholarship", "payout",
}

var expenseKeywords = []string{
	"餐飲", "早餐", "午餐", "晚餐", "宵夜", "飲料", "咖啡", "聚餐",
	"交通", "公車", "捷運", "計程車", "加油", "停車",
	"購物", "服飾", "日用品",
	"娛樂", "電影", "遊戲", "旅遊",
	"房租", "水電", "電費", "水費", "瓦斯", "網路費", "電話費",
	"醫療", "看診", "藥品",
	"教育", "學費", "書籍",
	"保險", "保費", "訂閱",
	"food", "breakfast", "lunch", "dinner", "coffee",
	"transport", "commute", "fuel",
	"shopping", "entertainment", "rent", "utilities",
	"medical", "education", "insurance", "subscription",
}

// keywordColor pairs a keyword with its display color. Lookup scans the slice
// in declaration order and the first containment match wins, so a name that
// matches several keys always resolves the same way.
type keywordColor struct {
	keyword string
	color   string
}

var incomeColors = []keywordColor{
	{"薪資", "#4A90D9"},
	{"薪水", "#4A90D9"},
	{"獎金", "#F5A623"},
	{"投資", "#7ED321"},
	{"股利", "#7ED321"},
	{"利息", "#50E3C2"},
	{"租金", "#9013FE"},
	{"退款", "#B8E986"},
	{"salary", "#4A90D9"},
	{"bonus", "#F5A623"},
}

var expenseColors = []keywordColor{
	{"餐飲", "#FF9800"},
	{"早餐", "#FF9800"},
	{"午餐", "#FF9800"},
	{"晚餐", "#FF9800"},
	{"交通", "#9C27B0"},
	{"購物", "#E91E63"},
	{"娛樂", "#3F51B5"},
	{"房租", "#795548"},
	{"水電", "#607D8B"},
	{"醫療", "#F44336"},
	{"教育", "#009688"},
	{"保險", "#FF5722"},
	{"food", "#FF9800"},
	{"lunch", "#FF9800"},
	{"transport", "#9C27B0"},
}

const (
	defaultIncomeColor  = "#81C784"
	defaultExpenseColor = "#E57373"
)

// Confidence formula constants. Kept exactly as the product defined them:
// base 0.6, +0.3 per matched keyword of the winning set, ceiling 0.9.
const (
	confidenceBase    = 0.6
	confidencePerHit  = 0.3
	confidenceCeiling = 0.9
)

// classificationService implements the ClassificationSvc interface. It is a
// pure text component: no repository, no logger, no shared mutable state, so
// a single instance is safe for arbitrary concurrent use.
type classificationService struct{}

// NewClassificationService creates a new classification service.
func NewClassificationService() portssvc.ClassificationSvc {
	return &classificationService{}
}

// Ensure classificationService implements the ClassificationSvc interface
var _ portssvc.ClassificationSvc = (*classificationService)(nil)

// normalizeName trims surrounding whitespace and case-folds Latin script.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// matchKeywords returns every keyword of the vocabulary contained in name,
// preserving vocabulary order.
func matchKeywords(name string, vocabulary []string) []string {
	var matched []string
	for _, kw := range vocabulary {
		if strings.Contains(name, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Classify infers the category type from the name alone. Expense keywords win
// over income keywords when a name contains both (a name like "保險理賠"
// matches both vocabularies; the tie-break is deliberate and fixed). A name
// matching neither vocabulary yields nil, never an error.
func (s *classificationService) Classify(name string) *domain.CategoryType {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil
	}
	if len(matchKeywords(normalized, expenseKeywords)) > 0 {
		t := domain.CategoryTypeExpense
		return &t
	}
	if len(matchKeywords(normalized, incomeKeywords)) > 0 {
		t := domain.CategoryTypeIncome
		return &t
	}
	return nil
}

// SuggestType classifies the name and attaches a confidence score and a
// human-readable reason. Confidence is min(0.9, 0.6 + 0.3*matchCount) over
// the winning vocabulary's matches, so it is always within [0.6, 0.9] for a
// classified name and exactly 0 for an unknown one.
func (s *classificationService) SuggestType(name string) domain.TypeSuggestion {
	normalized := normalizeName(name)

	categoryType := s.Classify(name)
	if categoryType == nil {
		return domain.TypeSuggestion{
			Type:       nil,
			Confidence: 0,
			Reason:     "no known income or expense keywords matched",
		}
	}

	var matched []string
	if *categoryType == domain.CategoryTypeExpense {
		matched = matchKeywords(normalized, expenseKeywords)
	} else {
		matched = matchKeywords(normalized, incomeKeywords)
	}

	confidence := confidenceBase + confidencePerHit*float64(len(matched))
	if confidence > confidenceCeiling {
		confidence = confidenceCeiling
	}

	return domain.TypeSuggestion{
		Type:            categoryType,
		Confidence:      confidence,
		Reason:          fmt.Sprintf("matched %s keywords: %s", *categoryType, strings.Join(matched, ", ")),
		MatchedKeywords: matched,
	}
}

// RecommendedColor returns the display color for a category name. The lookup
// scans the type's color table in declaration order and returns the first
// containment match, falling back to the per-type default.
func (s *classificationService) RecommendedColor(categoryType domain.CategoryType, name string) string {
	normalized := normalizeName(name)

	table := expenseColors
	fallback := defaultExpenseColor
	if categoryType == domain.CategoryTypeIncome {
		table = incomeColors
		fallback = defaultIncomeColor
	}

	for _, entry := range table {
		if strings.Contains(normalized, entry.keyword) {
			return entry.color
		}
	}
	return fallback
}
