package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// memberRegistry canonicalizes matched regions: two regions of the same
// unit that overlap by more than half of the smaller one are the same
// member, widened to cover both. Without this, slightly different
// extensions of the same copy would report as distinct members.
type memberRegistry struct {
	byUnit  map[string][]int
	regions []Location
}

func newMemberRegistry() *memberRegistry {
	return &memberRegistry{byUnit: make(map[string][]int)}
}

func (r *memberRegistry) add(loc Location) int {
	for _, idx := range r.byUnit[loc.File] {
		if overlapsEnough(r.regions[idx], loc) {
			r.regions[idx] = widen(r.regions[idx], loc)
			return idx
		}
	}
	idx := len(r.regions)
	r.regions = append(r.regions, loc)
	r.byUnit[loc.File] = append(r.byUnit[loc.File], idx)
	return idx
}

func overlapsEnough(a, b Location) bool {
	overlap := min(a.EndToken, b.EndToken) - max(a.StartToken, b.StartToken)
	if overlap <= 0 {
		return false
	}
	return overlap*2 > min(a.Tokens, b.Tokens)
}

func widen(a, b Location) Location {
	if b.StartToken < a.StartToken {
		a.StartToken = b.StartToken
		a.StartLine = b.StartLine
	}
	if b.EndToken > a.EndToken {
		a.EndToken = b.EndToken
		a.EndLine = b.EndLine
	}
	a.Tokens = a.EndToken - a.StartToken
	return a
}

// buildClusters groups pairs whose regions transitively connect into
// one cluster each. The cluster takes the most severe pair type and the
// lowest pair similarity.
func buildClusters(pairs []Pair, units map[string]*unit) []Cluster {
	if len(pairs) == 0 {
		return nil
	}

	registry := newMemberRegistry()
	type edge struct {
		a, b int
		pair int
	}
	edges := make([]edge, 0, len(pairs))
	for idx := range pairs {
		a := registry.add(pairs[idx].A)
		b := registry.add(pairs[idx].B)
		edges = append(edges, edge{a: a, b: b, pair: idx})
	}

	uf := newUnionFind(len(registry.regions))
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	byRoot := make(map[int]*Cluster)
	for _, e := range edges {
		root := uf.find(e.a)
		cluster := byRoot[root]
		if cluster == nil {
			cluster = &Cluster{Rule: pairs[e.pair].Rule, Similarity: 1.0}
			byRoot[root] = cluster
		}
		cluster.Type = moreSevere(cluster.Type, pairs[e.pair].Type)
		if pairs[e.pair].Similarity < cluster.Similarity {
			cluster.Similarity = pairs[e.pair].Similarity
		}
	}

	for idx := range registry.regions {
		root := uf.find(idx)
		if cluster, ok := byRoot[root]; ok {
			cluster.Members = append(cluster.Members, registry.regions[idx])
		}
	}

	clusters := make([]Cluster, 0, len(byRoot))
	for _, cluster := range byRoot {
		sort.Slice(cluster.Members, func(i, j int) bool {
			a, b := cluster.Members[i], cluster.Members[j]
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			if a.StartLine != b.StartLine {
				return a.StartLine < b.StartLine
			}
			return a.File < b.File
		})
		cluster.Severity = cluster.Type.Severity()
		cluster.Key = clusterKey(cluster.Members, units)
		clusters = append(clusters, *cluster)
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i].Members[0], clusters[j].Members[0]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.StartLine < b.StartLine
	})

	return clusters
}

// clusterKey derives a stable identity for a cluster from its members'
// paths and normalized content, not line numbers, so baselines survive
// code moving around inside a file.
func clusterKey(members []Location, units map[string]*unit) string {
	keys := make([]string, len(members))
	for i, m := range members {
		var content string
		if u, ok := units[m.File]; ok {
			content = joinNormalized(u.tokens[m.StartToken:m.EndToken])
		}
		keys[i] = fmt.Sprintf("%s:%016x", m.Path, xxhash.Sum64String(content))
	}
	sort.Strings(keys)

	sum := sha256.Sum256([]byte(strings.Join(keys, "|")))
	return hex.EncodeToString(sum[:])
}
