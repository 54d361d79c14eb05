// Command ruleslint validates a YAML rule file without touching any PDF.
// It exercises the same loader as tendertag, so a file that lints clean also
// loads clean at run time.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tenderworks/tendertag/internal/rules"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ruleslint <rules.yaml>")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	set, err := rules.Load(os.Args[1], logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}

	for i := range set.Rules {
		r := &set.Rules[i]
		fmt.Printf("ok: %s / %s (mode=%s groups=%d)\n",
			r.Section, r.Parameter, r.Mode, r.Regexp().NumSubexp())
	}
	fmt.Printf("%d rules, %d bid-info fields, %d defaults\n",
		len(set.Rules), len(set.BidInfo), len(set.Defaults))
}
