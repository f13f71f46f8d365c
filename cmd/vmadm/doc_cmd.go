package main

import (
	"github.com/alecthomas/kong"
)

// DocCmd prints the entire command surface as markdown, for generating the man-page-style
// reference doc that ships alongside the binary.
type DocCmd struct{}

func (c *DocCmd) Run(kctx *kong.Context) error {
	return MarkdownHelpPrinter(kong.HelpOptions{}, kctx)
}
