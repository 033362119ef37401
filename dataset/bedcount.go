package dataset

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// BedCategory 病床区分。ラベル付き（例: 一般, 精神）か、ラベルなし
// （数値のみの記載）のどちらか。Labeled=false のエントリはデータセット全体で
// 機関ごとに高々1件しか存在しない（マップ書き込みの後勝ちセマンティクス）。
type BedCategory struct {
	Label   string `json:"label"`
	Labeled bool   `json:"labeled"`
}

// Labeled ラベル付きの病床区分を作成
func Labeled(label string) BedCategory {
	return BedCategory{Label: label, Labeled: true}
}

// Unlabeled ラベルなしの病床区分（数値のみの記載用）
var Unlabeled = BedCategory{}

// BedCount 病床区分ごとの病床数。値が欠損したエントリは格納前に
// 取り除かれるため、全エントリが非負整数を持つ。空マップは許容される。
type BedCount map[BedCategory]int

// IsEmpty エントリが1件もないかどうか
func (bc BedCount) IsEmpty() bool {
	return len(bc) == 0
}

// Clone 独立したコピーを返す
func (bc BedCount) Clone() BedCount {
	if bc == nil {
		return BedCount{}
	}
	out := make(BedCount, len(bc))
	for k, v := range bc {
		out[k] = v
	}
	return out
}

// Labels ラベル付き区分のラベル一覧をソート済みで返す。
// 空白のみのラベルとラベルなしエントリは含まない。
func (bc BedCount) Labels() []string {
	labels := make([]string, 0, len(bc))
	seen := make(map[string]bool, len(bc))
	for cat := range bc {
		if !cat.Labeled {
			continue
		}
		label := strings.TrimSpace(cat.Label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Get ラベル名で病床数を引く
func (bc BedCount) Get(label string) (int, bool) {
	n, ok := bc[Labeled(label)]
	return n, ok
}

// String 表示用の文字列（例: "一般 1178 / 精神 40"、数値のみは "22"）
func (bc BedCount) String() string {
	if len(bc) == 0 {
		return ""
	}
	parts := make([]string, 0, len(bc))
	for _, label := range bc.Labels() {
		n := bc[Labeled(label)]
		parts = append(parts, label+" "+strconv.Itoa(n))
	}
	if n, ok := bc[Unlabeled]; ok {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, " / ")
}

// unlabeledKey ラベルなしエントリの JSON 上のキー。パーサはラベルを空に
// 正規化しないため、空文字キーと衝突しない。
const unlabeledKey = ""

// MarshalJSON JSON オブジェクト（ラベル→病床数）に変換する。
// ラベルなしエントリは空文字キーで表現する。
func (bc BedCount) MarshalJSON() ([]byte, error) {
	obj := make(map[string]int, len(bc))
	for cat, n := range bc {
		if cat.Labeled {
			obj[cat.Label] = n
		} else {
			obj[unlabeledKey] = n
		}
	}
	return json.Marshal(obj)
}

// UnmarshalJSON JSON オブジェクトから復元する。
// カラムナ格納のスキーマ統合で混入した null 値のキーは読み込み時に捨てる
// （永続化スナップショットの往復でのみ発生する形式上の癖）。
func (bc *BedCount) UnmarshalJSON(data []byte) error {
	var obj map[string]*int
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	out := make(BedCount, len(obj))
	for label, n := range obj {
		if n == nil || *n < 0 {
			continue
		}
		if label == unlabeledKey {
			out[Unlabeled] = *n
		} else {
			out[Labeled(label)] = *n
		}
	}
	*bc = out
	return nil
}

// ParseBedCountJSON 永続化済みテキストから BedCount を復元する寛容パーサ。
// 壊れたエンコーディングはエラーにせず空の BedCount に落とす。
func ParseBedCountJSON(text string) BedCount {
	text = strings.TrimSpace(text)
	if text == "" {
		return BedCount{}
	}
	var bc BedCount
	if err := json.Unmarshal([]byte(text), &bc); err != nil {
		return BedCount{}
	}
	if bc == nil {
		return BedCount{}
	}
	return bc
}
