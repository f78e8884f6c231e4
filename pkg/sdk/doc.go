// Package matchmaker embeds the candidate matching pipeline in a Go program.
//
// The client stores profiles in Redis or Valkey, ranks peers with a trait
// heuristic, asks a scoring oracle about the best ones and persists the fused
// results.
//
//	client, _ := matchmaker.New(ctx,
//	    matchmaker.WithRedis("localhost:6379", ""),
//	    matchmaker.WithOracle(os.Getenv("GEMINI_API_KEY"), "", "gemini-2.0-flash"),
//	)
//	defer client.Close()
//
//	_, _ = client.Entities().Put(ctx, matchmaker.Entity{ID: "alice", Username: "Alice", Traits: []string{"go"}})
//	out, _ := client.Compute(ctx, "alice")
//	matches, _ := client.Matches(ctx, "alice")
//
// A custom oracle can replace the built-in one with WithScorer.
package matchmaker
