package importer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"kijunserver/dataset"
)

// 病床数欄の自由記載を構造化するパーサ。
// 対応する書式:
//   "一般　　22"               -> {一般: 22}
//   "一般　　1178／精神　　40" -> {一般: 1178, 精神: 40}
//   "22"                       -> {ラベルなし: 22}
//   "一般"                     -> {}  (数値のないラベルは捨てる)

// bedSegmentDelimiter 全角・半角スラッシュを同一の区切りとして扱う
var bedSegmentDelimiter = regexp.MustCompile(`[／/]`)

// bedSegmentPattern ラベル＋空白（全角含む）＋数字、セグメント全体に一致
var bedSegmentPattern = regexp.MustCompile(`^(.+?)[\s　]+([0-9０-９]+)$`)

// bedDigitsOnly 数字のみのセグメント
var bedDigitsOnly = regexp.MustCompile(`^[0-9０-９]+$`)

// normalizeBedLabel 全角スペースを半角に畳み、空白区切りの重複語を初出順を
// 保って除去する（"一般 一般" のような二重記載への防御）。
func normalizeBedLabel(label string) string {
	label = strings.TrimSpace(strings.ReplaceAll(label, "　", " "))
	words := strings.Fields(label)
	seen := make(map[string]bool, len(words))
	deduped := make([]string, 0, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		deduped = append(deduped, w)
	}
	return strings.Join(deduped, " ")
}

// parseBedDigits 全角数字を半角に折り畳んでから整数にする。
// 変換に失敗した値は書き込まず捨てる（行全体は失敗させない）。
func parseBedDigits(digits string) (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(digits))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseBedCount 病床数欄の生テキストを BedCount に変換する。
// 空文字・空白のみは空の BedCount。どのパターンにも合わないセグメントは
// 捨てるだけでエラーにはしない（回復可能な曖昧さ）。
func ParseBedCount(raw string) dataset.BedCount {
	bc := dataset.BedCount{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return bc
	}

	for _, segment := range bedSegmentDelimiter.Split(raw, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if m := bedSegmentPattern.FindStringSubmatch(segment); m != nil {
			label := normalizeBedLabel(m[1])
			if label == "" {
				continue
			}
			if n, ok := parseBedDigits(m[2]); ok {
				bc[dataset.Labeled(label)] = n
			}
			continue
		}

		if bedDigitsOnly.MatchString(segment) {
			// 数値のみのエントリは高々1件。後のセグメントが上書きする。
			if n, ok := parseBedDigits(segment); ok {
				bc[dataset.Unlabeled] = n
			}
			continue
		}

		// 数値を伴わないラベルのみのセグメント。値が欠損したエントリは
		// 最終結果に残さない。
	}

	return bc
}
