package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 本包全部为纯函数：无I/O、无状态，供适配器与持久化映射共用
// 解析失败一律返回零值/nil，不返回error（单个字段失败不应拖垮整条记录）

var (
	nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpace  = regexp.MustCompile(`\s+`)
	nonDigit    = regexp.MustCompile(`[^0-9+]`)
	numberRe    = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)
)

// StripDiacritics 去除音标符号（如 "José" → "Jose"）
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s // 转换失败时保留原文
	}
	return out
}

// BuildSearchName 构建规范化检索名：小写、去音标、去非字母数字
func BuildSearchName(fullName string) string {
	s := strings.ToLower(StripDiacritics(strings.TrimSpace(fullName)))
	return nonAlphaNum.ReplaceAllString(s, "")
}

// SplitName 全名拆分为名/姓：首词为名，末词为姓，中间部分并入姓
// （多来源对中间名处理不一致，统一保守归入姓侧）
func SplitName(fullName string) (first, last string) {
	s := multiSpace.ReplaceAllString(strings.TrimSpace(fullName), " ")
	if s == "" {
		return "", ""
	}
	parts := strings.Split(s, " ")
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// JoinName 名/姓合成全名（任一为空时不产生多余空格）
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// FormatPhone 电话号码规范化：仅保留数字与前导+
func FormatPhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	keepPlus := strings.HasPrefix(s, "+")
	digits := nonDigit.ReplaceAllString(s, "")
	digits = strings.ReplaceAll(digits, "+", "")
	if digits == "" {
		return ""
	}
	if keepPlus {
		return "+" + digits
	}
	return digits
}

// dateLayouts 各来源出现过的日期格式，按命中频率排列
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
}

// ParseDate 宽松解析日期字符串，全部格式失败时返回nil
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// InchesToCm 英寸转厘米
func InchesToCm(inches float64) float64 {
	return inches * 2.54
}

// PoundsToKg 磅转千克
func PoundsToKg(lbs float64) float64 {
	return lbs * 0.45359237
}

// ParseLeadingNumber 从描述文本中提取首个数字（如"140 pounds"→140），无数字返回nil
func ParseLeadingNumber(s string) *float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// NormalizeGender 性别字段归一：male/female/空
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "boy":
		return "male"
	case "f", "female", "girl":
		return "female"
	default:
		return ""
	}
}

// StripHTML 粗粒度去除HTML标签（FBI details 字段为HTML片段）
var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func StripHTML(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(htmlTagRe.ReplaceAllString(s, " "), " "))
}
