package batch_test

import (
	"testing"

	"github.com/routecore/routecore/batch"
	"github.com/routecore/routecore/core"
)

func benchGraph(n int) *core.Graph {
	g := core.NewGraph()
	for i := 0; i < n; i++ {
		_ = g.AddEdge(i, (i+1)%n, 1)
		_ = g.AddEdge(i, (i*13+7)%n, 2.5)
	}

	return g
}

func benchQueries(n, q int) []batch.Query {
	queries := make([]batch.Query, q)
	for i := range queries {
		queries[i] = batch.Query{Source: (i * 31) % n, Target: (i * 17) % n}
	}

	return queries
}

func BenchmarkRun_Workers1(b *testing.B) {
	g := benchGraph(2048)
	queries := benchQueries(2048, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch.Run(g, queries, batch.Dijkstra, batch.WithWorkers(1))
	}
}

func BenchmarkRun_WorkersNumCPU(b *testing.B) {
	g := benchGraph(2048)
	queries := benchQueries(2048, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch.Run(g, queries, batch.Dijkstra)
	}
}
