package lightpath

import (
	"fmt"
	"sync"
)

type Category uint8

const (
	Classified  Category = iota // topology chosen for the call
	RootFound                   // inner root finder converged
	RootFailed                  // residual not bracketed or ceiling hit
	Retried                     // locality check failed, seed readjusted
	TIRDetected                 // total internal reflection at an interface
	Fallback                    // straight-line substitution used
	NeckCrossed                 // path crossed the neck cylinder
	Published                   // result published
)

type StepLog struct {
	Name     string
	Category Category
	Theta    Real // trial or converged launch angle, if any
	Residual Real // angular residual at that theta
	Iter     int  // outer iteration number
}

type stepLogCache struct {
	mu    sync.Mutex
	steps map[string][]StepLog
}

var stepCache = &stepLogCache{
	steps: make(map[string][]StepLog),
}

func logStep(name string, category Category, theta, residual Real, iter int) {
	stepCache.mu.Lock()
	defer stepCache.mu.Unlock()
	stepCache.steps[name] = append(stepCache.steps[name], StepLog{
		Name:     name,
		Category: category,
		Theta:    theta,
		Residual: residual,
		Iter:     iter,
	})
}

func StepStats() {
	stepCache.mu.Lock()
	defer stepCache.mu.Unlock()
	for k, v := range stepCache.steps {
		fmt.Printf("Step type %s: %d logs\n", k, len(v))
	}
}
