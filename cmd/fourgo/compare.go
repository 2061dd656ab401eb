package main

import (
	"context"
	"fmt"
	"github.com/janpfeifer/fourGo/internal/learner"
	"github.com/janpfeifer/fourGo/internal/players"
	"github.com/janpfeifer/fourGo/internal/searchers/negamax"
	. "github.com/janpfeifer/fourGo/internal/state"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"lukechampine.com/frand"
	"runtime"
	"sync"
	"time"
)

// DefaultCompareGames is the number of matches of "compare" if not given.
const DefaultCompareGames = 100

// results of the matches between two agents.
type results struct {
	mu     sync.Mutex
	start  time.Time
	scores [2]players.Scores
	total  int
}

func (r *results) String() string {
	return fmt.Sprintf("Played %d of %d: agent #1 %v, agent #2 %v - %s",
		r.scores[0].Total(), r.total, r.scores[0], r.scores[1], time.Since(r.start).Round(time.Millisecond))
}

func getParallelism() int {
	if *flagParallelism > 0 {
		return *flagParallelism
	}
	return runtime.NumCPU()
}

// compare implements the "compare" command.
func compare[B Game[B, A], A comparable](ctx context.Context, first *learner.Learner[B, A], args []string) error {
	second, err := loadAgent[B, A](args[1], first.NewBoard)
	if err != nil {
		return err
	}
	games, depth := DefaultCompareGames, negamax.DefaultMaxDepth
	if len(args) > 2 {
		if games, err = parseCount(args[2], "number of games"); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		if depth, err = parseCount(args[3], "depth"); err != nil {
			return err
		}
	}
	agents := [2]*learner.Learner[B, A]{first, second}

	// newPlayers creates an independent pair of players for a match: searchers are not safe for concurrent use.
	newPlayers := func() (pair [2]players.Player[B, A], err error) {
		for ii, agent := range agents {
			config := fmt.Sprintf("%s,depth=%d,batch_depth=%d", players.MinimaxKind, depth, min(agent.BatchDepth, depth))
			pair[ii], err = players.New[B, A](config, agent.Evaluator, nil)
			if err != nil {
				return
			}
		}
		return
	}
	if _, err = newPlayers(); err != nil {
		return err
	}

	r := &results{start: time.Now(), total: games}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(getParallelism())
	for matchIdx := range games {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			pair, err := newPlayers()
			if err != nil {
				return err
			}
			// Sides at random: firstSide is the color of agent #1.
			firstSide := Players[frand.Intn(NumPlayers)]
			red, yellow := pair[0], pair[1]
			if firstSide == Yellow {
				red, yellow = yellow, red
			}
			_, final := players.PlayMatch(first.NewBoard(), red, yellow)
			klog.V(1).Infof("Match #%d: agent #1 as %s, %s", matchIdx, firstSide, final.GameState())

			r.mu.Lock()
			defer r.mu.Unlock()
			r.scores[0].Add(final.GameState(), firstSide)
			r.scores[1].Add(final.GameState(), firstSide.Opponent())
			fmt.Printf("\r%s\033[0K", r)
			return nil
		})
	}
	err = g.Wait()
	fmt.Println()
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
	}
	for ii, agent := range agents {
		fmt.Printf("Agent #%d (%s, %s): [draws, wins, losses]=%v\n", ii+1, args[ii], agent.ID, r.scores[ii])
	}
	return nil
}
