// Package main provides the recommendation CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	stairwayv1 "github.com/osa030/stairway/internal/api/stairwayv1"
	"github.com/osa030/stairway/internal/api/stairwayv1/stairwayv1connect"
)

var (
	app     = kingpin.New("stairway-recommendcli", "stairway recommendation client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("STAIRWAY_SERVER").String()
	timeout = app.Flag("timeout", "Request timeout").Default("30s").Duration()

	// tracks command
	tracksCmd = app.Command("tracks", "List selectable tracks")

	// recommend command
	recommendCmd   = app.Command("recommend", "Recommend tracks similar to the given one")
	recommendTrack = recommendCmd.Arg("track-name", "Catalog track name").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := stairwayv1connect.NewRecommendationServiceClient(
		&http.Client{Timeout: *timeout},
		*server,
	)

	ctx := context.Background()

	// Execute command
	var err error
	switch command {
	case tracksCmd.FullCommand():
		err = listTracks(ctx, client, os.Stdout)
	case recommendCmd.FullCommand():
		err = recommend(ctx, client, *recommendTrack, os.Stdout)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func listTracks(ctx context.Context, client stairwayv1connect.RecommendationServiceClient, w io.Writer) error {
	resp, err := client.ListTracks(ctx, connect.NewRequest(&stairwayv1.ListTracksRequest{}))
	if err != nil {
		return err
	}

	for _, name := range resp.Msg.Tracks {
		fmt.Fprintln(w, name)
	}
	return nil
}

func recommend(ctx context.Context, client stairwayv1connect.RecommendationServiceClient, trackName string, w io.Writer) error {
	start := time.Now()
	resp, err := client.Recommend(ctx, connect.NewRequest(&stairwayv1.RecommendRequest{TrackName: trackName}))
	if err != nil {
		return err
	}

	printRecommendations(w, resp.Msg)
	fmt.Fprintf(w, "\n(request %s, %s)\n", resp.Msg.RequestID, time.Since(start).Round(time.Millisecond))
	return nil
}

func printRecommendations(w io.Writer, r *stairwayv1.RecommendResponse) {
	fmt.Fprintf(w, "Recommendations for %q\n", r.Selected)

	if len(r.Items) == 0 {
		fmt.Fprintf(w, "\n[%s] %s\n", r.WarningCode, r.WarningMessage)
		return
	}

	for i, item := range r.Items {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, item.Name)
		fmt.Fprintf(w, "   Poster:  %s\n", item.PosterURL)
		if item.HasPreview {
			fmt.Fprintf(w, "   Preview: %s", item.PreviewURL)
			if item.Bitrate > 0 {
				fmt.Fprintf(w, " (%dkbps)", item.Bitrate)
			}
			fmt.Fprintln(w)
		} else {
			fmt.Fprintln(w, "   No preview available.")
		}
		if item.Failed {
			fmt.Fprintln(w, "   Could not fetch poster or preview.")
		}
	}
}
