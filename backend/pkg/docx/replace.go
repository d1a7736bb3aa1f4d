package docx

import (
	"sort"
	"strings"
	"unicode/utf8"
)

type match struct {
	start, end int
	value      string
}

// Replace substitutes every occurrence of the keys of values in all paragraphs
// and returns how many substitutions were made.
//
// Word splits text into runs at arbitrary points, so a token is located in the
// concatenated paragraph text. The replacement is written into the run where
// the token starts, which keeps that run's formatting. Runs the token fully
// covered are dropped, and the run where it ends keeps only its remainder.
// At any position the longest matching key wins.
func (d *Document) Replace(values map[string]string) int {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	total := 0
	for _, p := range d.paragraphs() {
		if n := replaceParagraph(p, keys, values); n > 0 {
			d.markDirty(owner(p))
			total += n
		}
	}
	return total
}

// textSlots returns the w:t elements of a paragraph, skipping paragraphs
// nested in it (text boxes), which are visited on their own.
func textSlots(p *node) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if c.kind != elementNode || c.name == "w:p" {
				continue
			}
			if c.name == "w:t" {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(p)
	return out
}

func findMatches(full string, keys []string, values map[string]string) []match {
	first := make(map[byte]bool, len(keys))
	for _, k := range keys {
		first[k[0]] = true
	}
	var out []match
	for pos := 0; pos < len(full); {
		if first[full[pos]] {
			matched := false
			for _, k := range keys {
				if strings.HasPrefix(full[pos:], k) {
					out = append(out, match{start: pos, end: pos + len(k), value: values[k]})
					pos += len(k)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(full[pos:])
		pos += size
	}
	return out
}

func replaceParagraph(p *node, keys []string, values map[string]string) int {
	slots := textSlots(p)
	if len(slots) == 0 {
		return 0
	}
	texts := make([]string, len(slots))
	starts := make([]int, len(slots))
	var b strings.Builder
	for i, s := range slots {
		starts[i] = b.Len()
		texts[i] = s.innerText()
		b.WriteString(texts[i])
	}
	matches := findMatches(b.String(), keys, values)
	if len(matches) == 0 {
		return 0
	}

	slotAt := func(offset int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	}

	changed := make([]bool, len(slots))
	dropped := make([]bool, len(slots))
	for m := len(matches) - 1; m >= 0; m-- {
		mt := matches[m]
		i := slotAt(mt.start)
		j := slotAt(mt.end - 1)
		if i == j {
			off := mt.start - starts[i]
			texts[i] = texts[i][:off] + mt.value + texts[i][off+(mt.end-mt.start):]
			changed[i] = true
			continue
		}
		texts[i] = texts[i][:mt.start-starts[i]] + mt.value
		changed[i] = true
		for k := i + 1; k < j; k++ {
			texts[k] = ""
			dropped[k] = true
		}
		texts[j] = texts[j][mt.end-starts[j]:]
		changed[j] = true
		if texts[j] == "" {
			dropped[j] = true
		}
	}

	for i, s := range slots {
		switch {
		case dropped[i] && texts[i] == "":
			dropSlot(s)
		case changed[i]:
			s.setText(texts[i])
			s.setAttr("xml:space", "preserve")
		}
	}
	return len(matches)
}

// dropSlot removes a w:t and, when nothing but properties is left, its run.
func dropSlot(t *node) {
	run := t.parent
	if run == nil {
		return
	}
	run.remove(t)
	if run.name != "w:r" || run.parent == nil {
		return
	}
	for _, c := range run.children {
		if c.kind == elementNode && c.name != "w:rPr" {
			return
		}
	}
	run.parent.remove(run)
}
