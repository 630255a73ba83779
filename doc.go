// Package esb is a fluent query builder over the Elasticsearch search DSL.
//
// A Client binds logical record kinds to physical indexes and types.
// Each search is an explicit builder value: compose boolean clauses from
// conditions, attach aggregation trees, set paging, sort and stored fields,
// then dispatch.
//
//	client, _ := esb.New(ctx, esb.Config{
//	    Hosts:   []string{"localhost:9200"},
//	    Types:   map[string]string{"advert": "advert"},
//	    Indexes: map[string]string{"advert": "adverts"},
//	})
//
//	s, _ := client.Search("advert")
//	resp, err := s.
//	    Query(esb.All(
//	        esb.Eq("system_data.storage_id", "archive"),
//	        esb.In("system_data.free_weeks", []int{2, 3}),
//	    )).
//	    Limit(0, 0).
//	    Aggs(esb.Nest(esb.BucketByTerm("emails", "email", 20000), esb.MetricMax("ids", "id"))).
//	    Sort(esb.Desc("id")).
//	    Fields("id", "email").
//	    Do(ctx)
//
// Invalid input (an unknown operator, negative paging, a bad sort direction)
// is recorded on the builder and returned by Do.
//
// # Scrolling
//
// Scroll walks every hit of a query page by page:
//
//	err := s.Query(esb.All(esb.Exists("email"))).ScrollEach(ctx, "1m", func(page esb.Response) error {
//	    for _, h := range page.Hits { ... }
//	    return nil
//	})
package esb
