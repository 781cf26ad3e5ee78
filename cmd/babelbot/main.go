// Babelbot is a translation bot: it takes text or voice messages from
// Telegram, HTTP or gRPC clients, works out the language they are in,
// translates them into the sender's chosen language and can answer with
// synthesized speech.
//
// Usage:
//
//	babelbot serve [--config /path/to/babelbot.yaml]
//	babelbot detect [--hint ru] <text...>
//	babelbot languages
//	babelbot version
//
//	@title						babelbot API
//	@version					1.0
//	@description				Text and voice translation with multi-signal language detection.
//	@BasePath					/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
