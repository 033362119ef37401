package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/width"
)

// ErrUnparseableDate 和暦日付として解釈できない非空入力に返すエラー。
// 書式不一致・範囲外の月日・暦上存在しない日付（2月31日など）を区別せず
// 1種類に畳む。入力が空の場合はこのエラーではなく (nil, nil) になる。
var ErrUnparseableDate = errors.New("和暦日付を解析できません")

// eraOffsets 元号→西暦オフセット。offset + 元号年 = 西暦年。
var eraOffsets = map[string]int{
	"明治": 1867,
	"大正": 1911,
	"昭和": 1925,
	"平成": 1988,
	"令和": 2018,
}

// 元号名の後の空白を許す版と一切の空白を許さない版を順に試す。
// 年月日の数字と単位の前後には半角・全角の空白が入ることがある。
var eraDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(明治|大正|昭和|平成|令和)[ 　]*(元|[0-9０-９]+)[ 　]*年[ 　]*([0-9０-９]+)[ 　]*月[ 　]*([0-9０-９]+)[ 　]*日`),
	regexp.MustCompile(`^(明治|大正|昭和|平成|令和)(元|[0-9０-９]+)年([0-9０-９]+)月([0-9０-９]+)日`),
}

// parseEraYear 元号年。"元" は1年、それ以外は数字。
func parseEraYear(s string) (int, error) {
	if s == "元" {
		return 1, nil
	}
	return strconv.Atoi(width.Narrow.String(s))
}

// ParseEraDate 和暦の日付文字列（例: "令和元年12月 1日"、"平成29年 9月 1日"）
// を西暦の日付に変換する。空入力は (nil, nil)。非空入力が解析できない場合は
// ErrUnparseableDate を返す。
func ParseEraDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	var m []string
	for _, pattern := range eraDatePatterns {
		if m = pattern.FindStringSubmatch(raw); m != nil {
			break
		}
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}

	year, err := parseEraYear(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}
	month, err := strconv.Atoi(width.Narrow.String(m[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}
	day, err := strconv.Atoi(width.Narrow.String(m[4]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}

	// 月日の上限は固定値で事前検査し、月ごとの日数は日付構築に委ねる
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}

	westernYear := eraOffsets[m[1]] + year
	date := time.Date(westernYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date は 2月31日を3月に正規化するため、往復で棄却する
	if date.Year() != westernYear || date.Month() != time.Month(month) || date.Day() != day {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}
	return &date, nil
}
