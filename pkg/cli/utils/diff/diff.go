/* Copyright 2025 Dnote Authors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package diff computes line diffs between two texts
package diff

import (
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind is the kind of a line in a diff
type Kind int

const (
	// Equal is a line present in both texts
	Equal Kind = iota
	// Insert is a line present only in the second text
	Insert
	// Delete is a line present only in the first text
	Delete
)

// Line is a line of a diff, without its newline
type Line struct {
	Kind Kind
	Text string
}

func kindOf(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Insert
	case diffmatchpatch.DiffDelete:
		return Delete
	default:
		return Equal
	}
}

// Lines computes the line-by-line diff between two strings
func Lines(s1, s2 string) []Line {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Hour

	s1Chars, s2Chars, arr := dmp.DiffLinesToRunes(s1, s2)
	diffs := dmp.DiffMainRunes(s1Chars, s2Chars, false)
	diffs = dmp.DiffCharsToLines(diffs, arr)

	var ret []Line
	for _, d := range diffs {
		kind := kindOf(d.Type)

		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}

			ret = append(ret, Line{Kind: kind, Text: strings.TrimSuffix(text, "\n")})
		}
	}

	return ret
}

// Changed reports whether the lines contain an insertion or a deletion
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Kind != Equal {
			return true
		}
	}

	return false
}
