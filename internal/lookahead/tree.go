package lookahead

import (
	"context"
	"slices"

	"github.com/wortmanb/wordlebot/internal/game"
	"github.com/wortmanb/wordlebot/internal/words"
)

// Node explains the evaluation of one guess against one pool. Trees are built
// bottom-up after the search and are never modified afterwards.
type Node struct {
	Guess     words.Word `json:"guess"`
	PoolSize  int        `json:"poolSize"`
	Depth     int        `json:"depth"`
	Cost      float64    `json:"cost"`
	Heuristic bool       `json:"heuristic,omitempty"` // costs at this node were estimated, not searched
	Closed    bool       `json:"closed,omitempty"`    // pool of two or fewer, costed in closed form
	Branches  []Branch   `json:"branches,omitempty"`
}

// Branch is one possible response to the node's guess.
type Branch struct {
	Pattern     game.Pattern `json:"pattern"`
	Words       []words.Word `json:"words"`
	Probability float64      `json:"probability"`
	Cost        float64      `json:"cost"`
	Next        *Node        `json:"next,omitempty"`
}

// explain rebuilds the evaluation of guess as a tree. The costs come from
// the same memoized searches evaluate uses, so they agree with it exactly.
func (e *Engine) explain(ctx context.Context, guess words.Word, pool words.Pool, depth int, st Strategy) (*Node, error) {
	cost, err := e.evaluate(ctx, guess, pool, depth, st)
	if err != nil {
		return nil, err
	}
	n := pool.Len()
	node := &Node{Guess: guess, PoolSize: n, Depth: depth, Cost: cost}
	if n <= 2 {
		node.Closed = true
		return node, nil
	}

	pm, err := e.calc.Partition(guess, pool)
	if err != nil {
		return nil, err
	}
	d := depth
	if depth > 0 {
		d = e.effectiveDepth(n, depth)
	} else {
		node.Heuristic = true
	}
	for _, b := range pm.Buckets {
		br := Branch{Pattern: b.Pattern, Words: slices.Clone(b.Words), Probability: prob(b, n)}
		switch {
		case b.Pattern.AllHit():
			br.Cost = 1
		case depth == 0:
			br.Cost = heuristicCost(b, st)
		default:
			sub := words.NewPool(b.Words)
			child, err := e.bestMove(ctx, sub, d-1, st)
			if err != nil {
				return nil, err
			}
			br.Cost = 1 + child.cost
			if br.Next, err = e.explain(ctx, child.word, sub, d-1, st); err != nil {
				return nil, err
			}
		}
		node.Branches = append(node.Branches, br)
	}
	return node, nil
}

// Walk visits n and every node below it, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, b := range n.Branches {
		b.Next.Walk(fn)
	}
}

// Worst is the highest branch cost below n, or n.Cost for leaves.
func (n *Node) Worst() float64 {
	if n == nil {
		return 0
	}
	if len(n.Branches) == 0 {
		return n.Cost
	}
	w := n.Branches[0].Cost
	for _, b := range n.Branches[1:] {
		if b.Cost > w {
			w = b.Cost
		}
	}
	return w
}
