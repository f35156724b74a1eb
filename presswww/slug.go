// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"regexp"
	"strings"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^\p{L}\p{N}_-]`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// formatSlug normalizes free form text into a URL slug: lowercased, runs of
// whitespace replaced with a hyphen, characters other than letters, digits,
// underscores and hyphens removed, and runs of hyphens collapsed into one.
func formatSlug(text string) string {
	text = strings.ToLower(text)
	text = slugSpaces.ReplaceAllString(text, "-")
	text = slugInvalid.ReplaceAllString(text, "")
	text = slugHyphens.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}
