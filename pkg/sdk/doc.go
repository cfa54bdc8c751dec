// Package qou embeds the query-understanding search pipeline in a Go program.
//
// The client talks to Redis directly; no qou HTTP server is needed.
//
//	client, _ := qou.New(ctx, qou.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_ = client.EnsureIndex(ctx, false)
//	_, _ = client.Index(ctx, products)
//
//	res, _ := client.Search(ctx, qou.Query{Text: "organic bananas", Limit: 10})
//	if s, ok := res.DidYouMean(); ok {
//	    fmt.Println("did you mean", s)
//	}
//
// Entity recognition is optional: without WithExtractor only the built-in
// fallback lexicon is used.
package qou
