package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/app"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

// Repairs derived contributor sets after out-of-band store edits:
// reaggregates the named nodes, or every catalog with -all.
func main() {
	var nodes idList
	var all bool
	flag.Var(&nodes, "node", "catalog or section id to reaggregate (repeatable)")
	flag.BoolVar(&all, "all", false, "reaggregate every catalog")
	flag.Parse()

	if !all && len(nodes) == 0 {
		fmt.Println("nothing to do: pass -node <id> or -all")
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()

	if all {
		catalogs, err := application.Repos.Catalog.GetAll(dbctx.Context{Ctx: ctx})
		if err != nil {
			fmt.Printf("load catalogs: %v\n", err)
			os.Exit(1)
		}
		for _, c := range catalogs {
			nodes = append(nodes, c.ID.String())
		}
	}

	failed := 0
	for _, raw := range nodes {
		id, err := uuid.Parse(raw)
		if err != nil {
			fmt.Printf("skipping invalid id %q\n", raw)
			failed++
			continue
		}
		if err := application.Services.Aggregation.Reaggregate(ctx, id); err != nil {
			fmt.Printf("reaggregate %s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("reaggregated %s\n", id)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
