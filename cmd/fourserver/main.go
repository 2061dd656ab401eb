// fourserver serves the move endpoint: POST /move with a board answers the action of the AI.
//
// The AI uses the evaluator of an agent file (-agent), or a fresh evaluator (-evaluator) otherwise.
package main

import (
	"context"
	"flag"
	"github.com/janpfeifer/fourGo/internal/ai"
	_ "github.com/janpfeifer/fourGo/internal/ai/evaluators"
	"github.com/janpfeifer/fourGo/internal/learner"
	"github.com/janpfeifer/fourGo/internal/players"
	"github.com/janpfeifer/fourGo/internal/profilers"
	"github.com/janpfeifer/fourGo/internal/server"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

var (
	flagAddr      = flag.String("addr", ":8080", "Address to listen to.")
	flagGame      = flag.String("game", Drop4Name, "Game served: \"drop4\" or \"push4\". Ignored if -agent is given.")
	flagAgent     = flag.String("agent", "", "Agent file whose evaluator is used.")
	flagEvaluator = flag.String("evaluator", "consecutive", "Evaluator configuration, if no -agent is given.")
	flagAI        = flag.String("ai", "composite,depth=4,batch_depth=0,simple_depth=6", "Player configuration of the AI.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	must.M(profilers.Setup(ctx))
	defer profilers.OnQuit()

	handler := must.M1(newHandler())
	srv := &http.Server{
		Addr:              *flagAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("Shutdown: %+v", err)
		}
	}()
	klog.Infof("Serving %s on %s", *flagAI, *flagAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		klog.Fatalf("Server failed: %+v", err)
	}
}

// newHandler creates the server for the configured game.
func newHandler() (http.Handler, error) {
	game := *flagGame
	var record *learner.Record
	if *flagAgent != "" {
		var err error
		record, err = learner.LoadRecord(*flagAgent, "")
		if err != nil {
			return nil, err
		}
		game = record.Game
	}
	switch game {
	case Drop4Name:
		p, err := newPlayer[*Drop4, int](game, record, NewDrop4)
		if err != nil {
			return nil, err
		}
		return server.NewDrop4Server(p).Router(), nil
	case Push4Name:
		p, err := newPlayer[*Push4, Pos](game, record, NewPush4)
		if err != nil {
			return nil, err
		}
		return server.NewPush4Server(p).Router(), nil
	}
	return nil, errors.Errorf("unknown game %q", game)
}

// newPlayer creates the AI player with the evaluator of the agent record, if given, or a new one.
func newPlayer[B Game[B, A], A comparable](game string, record *learner.Record, newBoard func() B) (players.Player[B, A], error) {
	var evaluator ai.Evaluator
	if record != nil {
		l, err := learner.FromRecord[B, A](record, newBoard)
		if err != nil {
			return nil, err
		}
		klog.Infof("Agent %s: %s", l.ID, l)
		evaluator = l.Evaluator
	} else {
		var err error
		evaluator, err = ai.New(*flagEvaluator, game)
		if err != nil {
			return nil, err
		}
	}
	return players.New[B, A](*flagAI, evaluator, nil)
}
