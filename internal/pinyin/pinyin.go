package pinyin

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// toneMarks 声调元音 → 基础字母 + 声调序号。
// 客户端与服务端必须使用同一张表，否则缓存键会分裂。
var toneMarks = map[rune]struct {
	base rune
	tone byte
}{
	'ā': {'a', '1'}, 'á': {'a', '2'}, 'ǎ': {'a', '3'}, 'à': {'a', '4'},
	'ē': {'e', '1'}, 'é': {'e', '2'}, 'ě': {'e', '3'}, 'è': {'e', '4'},
	'ī': {'i', '1'}, 'í': {'i', '2'}, 'ǐ': {'i', '3'}, 'ì': {'i', '4'},
	'ō': {'o', '1'}, 'ó': {'o', '2'}, 'ǒ': {'o', '3'}, 'ò': {'o', '4'},
	'ū': {'u', '1'}, 'ú': {'u', '2'}, 'ǔ': {'u', '3'}, 'ù': {'u', '4'},
	'ǖ': {'v', '1'}, 'ǘ': {'v', '2'}, 'ǚ': {'v', '3'}, 'ǜ': {'v', '4'},
	'ń': {'n', '2'}, 'ň': {'n', '3'},
	'ḿ': {'m', '2'},
}

// Normalize 将发音键转换为规范形式：
//   - 去除首尾空白并转小写
//   - 声调元音替换为基础字母，声调数字移到末尾（mā → ma1，lǜ → lv4）
//   - 不带声调的 ü 替换为 v（nü → nv）
//
// 已是规范形式的输入原样返回，重复调用结果不变。
func Normalize(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))

	var b strings.Builder
	b.Grow(len(key))
	var tone byte

	for _, r := range key {
		if m, ok := toneMarks[r]; ok {
			b.WriteRune(m.base)
			tone = m.tone
			continue
		}
		if r == 'ü' {
			b.WriteRune('v')
			continue
		}
		b.WriteRune(r)
	}

	if tone != 0 {
		b.WriteByte(tone)
	}
	return b.String()
}

// displayVowels 基础字母 → 按声调排列的注音形式（索引 0 对应一声）。
var displayVowels = map[byte][4]string{
	'a': {"ā", "á", "ǎ", "à"},
	'e': {"ē", "é", "ě", "è"},
	'i': {"ī", "í", "ǐ", "ì"},
	'o': {"ō", "ó", "ǒ", "ò"},
	'u': {"ū", "ú", "ǔ", "ù"},
	'v': {"ǖ", "ǘ", "ǚ", "ǜ"},
}

// Display 将规范形式的键还原为带声调符号的注音写法（ma1 → mā，lv4 → lǜ）。
// 声调符号落在主元音上：a/e 优先，其次 ou 中的 o，否则最后一个元音。
// 轻声（5）或无声调的键仅替换 v → ü。
func Display(key string) string {
	tone := 0
	letters := key
	if n := len(key); n > 0 && key[n-1] >= '1' && key[n-1] <= '5' {
		tone = int(key[n-1] - '0')
		letters = key[:n-1]
	}

	markAt := -1
	if tone >= 1 && tone <= 4 {
		for i := 0; i < len(letters); i++ {
			switch letters[i] {
			case 'a', 'e':
				markAt = i
			case 'o':
				if markAt < 0 || letters[markAt] == 'u' || letters[markAt] == 'i' || letters[markAt] == 'v' {
					markAt = i
				}
			case 'i', 'u', 'v':
				if markAt < 0 || ((letters[markAt] == 'i' || letters[markAt] == 'u' || letters[markAt] == 'v') && i > markAt) {
					markAt = i
				}
			}
		}
	}

	var b strings.Builder
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if i == markAt {
			b.WriteString(displayVowels[c][tone-1])
			continue
		}
		if c == 'v' {
			b.WriteString("ü")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsValidKey 判断规范化后的键是否是合法的发音键：
// 仅由 ASCII 小写字母组成，末尾可带一个 1-5 的声调数字。
func IsValidKey(key string) bool {
	if key == "" {
		return false
	}
	letters := key
	last := key[len(key)-1]
	if last >= '1' && last <= '5' {
		letters = key[:len(key)-1]
	}
	if letters == "" {
		return false
	}
	for _, r := range letters {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Lookup 返回文本中每个汉字的发音键（规范形式，带声调数字）。
// 多音字返回全部读音；非汉字字符被跳过。
func Lookup(text string) [][]string {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone3
	args.Heteronym = true

	var result [][]string
	for _, char := range text {
		if !unicode.Is(unicode.Han, char) {
			continue
		}
		readings := gopinyin.Pinyin(string(char), args)
		if len(readings) == 0 || len(readings[0]) == 0 {
			continue
		}
		keys := make([]string, 0, len(readings[0]))
		seen := make(map[string]bool, len(readings[0]))
		for _, r := range readings[0] {
			k := Normalize(r)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		result = append(result, keys)
	}
	return result
}
