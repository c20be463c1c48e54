package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/search"
)

var (
	searchLat  float64
	searchLon  float64
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one aggregation from the terminal",
	Long:  "Runs the full aggregation pipeline for a query and prints events as they stream. Useful for smoke-testing providers without an HTTP client.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		req := search.Request{Query: strings.Join(args, " ")}
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
			req.Lat, req.Lon, req.HasGeo = searchLat, searchLon, true
		}

		for ev := range e.Aggregator.Stream(cmd.Context(), req) {
			if searchJSON {
				payload, err := json.Marshal(ev.Data)
				if err != nil {
					continue
				}
				fmt.Printf("%s\t%s\n", ev.Name, payload)
				continue
			}
			printEvent(ev)
		}

		if strings.TrimSpace(req.Query) == "" {
			return eris.New("search: query is required")
		}
		return nil
	},
}

func printEvent(ev search.Event) {
	switch ev.Name {
	case search.EventRecord:
		rec, ok := ev.Data.(model.UniversalRecord)
		if !ok {
			return
		}
		fmt.Printf("  [%s] %-30s %.4f  %s\n", rec.Provider, truncateName(rec.Name), rec.Score, rec.Headline)
	case search.EventIntent:
		it, ok := ev.Data.(model.Intent)
		if !ok {
			return
		}
		fmt.Printf("intent: %s\n", it.EntityType)
	case search.EventProviders:
		p, ok := ev.Data.(search.ProvidersPayload)
		if !ok {
			return
		}
		fmt.Printf("providers: %s\n", strings.Join(p.Names, ", "))
	case search.EventCached:
		fmt.Println("cache hit")
	case search.EventDone:
		d, ok := ev.Data.(search.DonePayload)
		if !ok {
			return
		}
		fmt.Printf("done: %d records (cached=%v)\n", d.Total, d.Cached)
	case search.EventError:
		e, ok := ev.Data.(search.ErrorPayload)
		if !ok {
			return
		}
		fmt.Printf("error: %s\n", e.Error)
	}
}

func truncateName(name string) string {
	if len(name) <= 30 {
		return name
	}
	return name[:27] + "..."
}

func init() {
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "latitude hint for proximity scoring")
	searchCmd.Flags().Float64Var(&searchLon, "lon", 0, "longitude hint for proximity scoring")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print raw event payloads")
	rootCmd.AddCommand(searchCmd)
}
