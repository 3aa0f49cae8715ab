// Package openhours は開館時間と利用者が指定した時間帯の照合を提供する。
// 日をまたぐ区間は2日分（[0, 2880)分）に展開したタイムライン上で扱う。
package openhours

import (
	"strconv"
	"strings"
)

const minutesPerDay = 1440

// Segment は展開タイムライン上の半開区間[Start, End)を分単位で表す。
type Segment struct {
	Start int
	End   int
}

// ParseClockTime は "H:MM" または "HH:MM" を0時からの経過分に変換する。
// 前後の空白は無視する。形式不正・範囲外の場合はfalseを返す（エラーではない）。
func ParseClockTime(s string) (int, bool) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	h, ok := parseDigits(hh)
	if !ok {
		return 0, false
	}
	m, ok := parseDigits(mm)
	if !ok {
		return 0, false
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ParseDBTime はPostgreSQLのtime型文字列（"HH:MM:SS"）を経過分に変換する。
// 先頭の "HH:MM" のみを参照し、秒は切り捨てる。
func ParseDBTime(value *string) (int, bool) {
	if value == nil || len(*value) < 5 {
		return 0, false
	}
	s := *value
	if s[2] != ':' {
		return 0, false
	}
	h, ok := parseDigits(s[:2])
	if !ok {
		return 0, false
	}
	m, ok := parseDigits(s[3:5])
	if !ok {
		return 0, false
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// parseDigits は符号なしの10進数字列のみを受け付ける。
func parseDigits(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Segments は毎日繰り返す区間[from, to)を展開タイムライン上のセグメントに変換する。
//
//   - from == to: 空（閉館/不明として扱い、24時間営業とはみなさない）
//   - from < to:  当日分と翌日分（+1440）の2セグメント
//   - from > to:  日をまたぐ1セグメント[from, to+1440)
func Segments(from, to int) []Segment {
	if from == to {
		return nil
	}
	if from < to {
		return []Segment{
			{Start: from, End: to},
			{Start: from + minutesPerDay, End: to + minutesPerDay},
		}
	}
	return []Segment{{Start: from, End: to + minutesPerDay}}
}

// CoversInterval は施設の開館区間が照会区間を完全に含むかを判定する。
// 照会側のいずれかのセグメントが施設側のいずれかのセグメントに収まればtrueを返す。
// 照会側の翌日分セグメントは、日をまたぐ施設の後半（0時以降）との照合に使われる。
func CoversInterval(shelterFrom, shelterTo, queryFrom, queryTo int) bool {
	shelterSegs := Segments(shelterFrom, shelterTo)
	querySegs := Segments(queryFrom, queryTo)
	for _, q := range querySegs {
		for _, s := range shelterSegs {
			if q.Start >= s.Start && q.End <= s.End {
				return true
			}
		}
	}
	return false
}

// Window は利用者が指定した時間帯（"HH:MM"、各々省略可）を表す。
type Window struct {
	From string
	To   string
}

// Active は少なくとも一方の時刻が解釈可能な場合にtrueを返す。
func (w Window) Active() bool {
	_, fromOK := ParseClockTime(w.From)
	_, toOK := ParseClockTime(w.To)
	return fromOK || toOK
}

// Matches は施設の開館時間が時間帯を満たすかを判定する。
// 片側のみ指定された場合は、その時刻から1分間の区間として照会する。
// 時間帯が指定されていない場合は常にtrue、開館時間が不明な施設は常にfalseとなる。
func (w Window) Matches(openFrom, openTo *string) bool {
	qFrom, fromOK := ParseClockTime(w.From)
	qTo, toOK := ParseClockTime(w.To)
	if !fromOK && !toOK {
		return true
	}

	sFrom, ok := ParseDBTime(openFrom)
	if !ok {
		return false
	}
	sTo, ok := ParseDBTime(openTo)
	if !ok {
		return false
	}

	switch {
	case fromOK && !toOK:
		return CoversInterval(sFrom, sTo, qFrom, (qFrom+1)%minutesPerDay)
	case !fromOK && toOK:
		return CoversInterval(sFrom, sTo, qTo, (qTo+1)%minutesPerDay)
	default:
		return CoversInterval(sFrom, sTo, qFrom, qTo)
	}
}
