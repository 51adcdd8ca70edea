// Package noveldex embeds the novel browser in another Go program: it indexes
// a glob of parquet partitions and serves filtered, paginated pages with their
// synopses, without running the HTTP server.
//
//	client, _ := noveldex.Open(ctx, noveldex.WithStore("data/*.parquet"))
//	defer client.Close()
//
//	page, _ := client.Browse(ctx, noveldex.Query{Genre: "fantasy", MinScore: 1000, Page: 2})
//	for _, n := range page.Novels {
//	    fmt.Println(n.ID, n.Title, n.Synopsis)
//	}
package noveldex
