package recipe

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPrefersAppScopedOverGlobal(t *testing.T) {
	r := NewRegistry()
	r.Register(Recipe{
		Name: "global-save", App: "", Priority: 1,
		Pattern: regexp.MustCompile(`(?i)^save$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { return Result{OK: true, Output: "global"} },
	})
	r.Register(Recipe{
		Name: "calc-save", App: "calculator", Priority: 5,
		Pattern: regexp.MustCompile(`(?i)^save$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { return Result{OK: true, Output: "calc"} },
	})

	rcp, _, ok := r.Match("save", "Calculator")
	assert.True(t, ok)
	assert.Equal(t, "calc-save", rcp.Name)
}

func TestMatchFallsBackToGlobal(t *testing.T) {
	r := NewRegistry()
	r.Register(Recipe{
		Name: "global-save", Priority: 1,
		Pattern: regexp.MustCompile(`(?i)^save$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { return Result{OK: true} },
	})

	rcp, _, ok := r.Match("save", "TextEdit")
	assert.True(t, ok)
	assert.Equal(t, "global-save", rcp.Name)
}

func TestMatchNoneFound(t *testing.T) {
	r := NewRegistry()
	_, _, ok := r.Match("save", "TextEdit")
	assert.False(t, ok)
}

func TestRegisterReplacesByName(t *testing.T) {
	r := NewRegistry()
	r.Register(Recipe{
		Name: "x", Priority: 1, Pattern: regexp.MustCompile(`^a$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { return Result{OK: true, Output: "first"} },
	})
	r.Register(Recipe{
		Name: "x", Priority: 1, Pattern: regexp.MustCompile(`^a$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { return Result{OK: true, Output: "second"} },
	})

	rcp, match, ok := r.Match("a", "")
	assert.True(t, ok)
	res := r.Execute(context.Background(), rcp, match, 0)
	assert.Equal(t, "second", res.Output)
}

func TestExecuteRecoversPanic(t *testing.T) {
	r := NewRegistry()
	rcp := Recipe{
		Name: "panicky", Pattern: regexp.MustCompile(`^boom$`),
		Handler: func(ctx context.Context, m []string, pid int) Result { panic("nope") },
	}
	res := r.Execute(context.Background(), rcp, nil, 0)
	assert.False(t, res.OK)
	assert.Equal(t, "recipe panicked", res.Error)
}
