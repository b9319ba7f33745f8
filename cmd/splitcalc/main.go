// splitcalc は精算額の取り分を表で出す。DBには触らない。
//
//	splitcalc -platform 2 -checkout 1 85000 120000
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"foodcourt/internal/domain/split"

	"github.com/olekukonko/tablewriter"
)

func main() {
	var (
		tenantPct   = flag.String("tenant", "97", "tenant percentage (informational, tenant takes the remainder)")
		platformPct = flag.String("platform", "2", "platform percentage")
		checkoutPct = flag.String("checkout", "1", "checkout percentage")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: splitcalc [flags] GROSS...")
		os.Exit(2)
	}

	p, err := split.ParsePercentages(*tenantPct, *platformPct, *checkoutPct)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := render(os.Stdout, p, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func render(w io.Writer, p split.Percentages, args []string) error {
	table := tablewriter.NewWriter(w)
	table.Header("gross", "tenant", "platform", "checkout")

	for _, a := range args {
		gross, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid gross %q", a)
		}
		s, err := split.Compute(gross, p)
		if err != nil {
			return err
		}
		if err := table.Append([]string{
			strconv.FormatInt(s.GrossAmount, 10),
			strconv.FormatInt(s.TenantShare, 10),
			strconv.FormatInt(s.PlatformShare, 10),
			strconv.FormatInt(s.CheckoutShare, 10),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
