package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/screener"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")
	sorts, _ := cmd.Flags().GetStringArray("sort")
	limit, _ := cmd.Flags().GetInt("limit")

	filter, err := model.ParseCategoryFilter(category)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	src, err := newProvider(cfg, pool, logger)
	if err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Poller.Timeout)
	defer cancel()

	tokens, err := src.Fetch(fetchCtx)
	if err != nil {
		return err
	}

	session := screener.New(feedConfig(cfg), screener.WithLogger(logger))
	defer session.Stop()

	if err := session.HandleBatch(tokens); err != nil {
		return err
	}

	rows := session.SetFilters(filter, search)
	for _, key := range sorts {
		if _, rows, err = session.RequestSort(model.SortKey(key)); err != nil {
			return err
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return printTable(cmd.OutOrStdout(), rows, session.Criteria())
}

func printTable(out io.Writer, rows []model.Token, c model.Criteria) error {
	p := message.NewPrinter(language.English)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SYMBOL\tCATEGORY\tPRICE\tCHANGE %\tVOLUME 24H\tMARKET CAP\tLIQUIDITY\tAGE\t")
	for _, t := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.Symbol,
			t.Category,
			decimal.NewFromFloat(t.Price).Round(6).String(),
			decimal.NewFromFloat(t.PriceChangePercent).StringFixed(2),
			p.Sprintf("%.0f", t.Volume24h),
			p.Sprintf("%.0f", t.MarketCap),
			p.Sprintf("%.0f", t.Liquidity),
			age(t.CreatedAt),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sort := "none"
	if c.Sort != nil {
		sort = fmt.Sprintf("%s %s", c.Sort.Key, c.Sort.Direction)
	}
	_, err := p.Fprintf(out, "\n%d tokens (category=%s search=%q sort=%s)\n", len(rows), c.Category, c.Search, sort)
	return err
}

func age(createdAt int64) string {
	if createdAt == 0 {
		return "-"
	}
	d := time.Since(time.UnixMilli(createdAt)).Truncate(time.Minute)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
