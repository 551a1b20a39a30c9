package hooks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsHandlersInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Register(BeforeAct, 10, "second", func(ctx Ctx) Ctx {
		order = append(order, "second")
		return nil
	})
	r.Register(BeforeAct, 1, "first", func(ctx Ctx) Ctx {
		order = append(order, "first")
		return nil
	})

	r.Fire(BeforeAct, Ctx{})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFireStopsChainWhenHandlerSetsStop(t *testing.T) {
	r := NewRegistry()
	r.Register(BeforeAct, 1, "blocker", func(ctx Ctx) Ctx {
		return Ctx{"stop": true, "error": "blocked"}
	})
	ran := false
	r.Register(BeforeAct, 2, "never", func(ctx Ctx) Ctx {
		ran = true
		return nil
	})

	out := r.Fire(BeforeAct, Ctx{})
	assert.True(t, out.Stopped())
	assert.False(t, ran)
}

func TestFireRecordsPanicAndContinues(t *testing.T) {
	r := NewRegistry()
	r.Register(BeforeAct, 1, "panics", func(ctx Ctx) Ctx {
		panic("boom")
	})
	ran := false
	r.Register(BeforeAct, 2, "after", func(ctx Ctx) Ctx {
		ran = true
		return nil
	})

	r.Fire(BeforeAct, Ctx{})
	assert.True(t, ran)
	errs := r.RecentErrors(5)
	assert.Len(t, errs, 1)
	assert.Equal(t, "hook:panics", errs[0].Source)
}

func TestClearErrorsEmptiesRing(t *testing.T) {
	r := NewRegistry()
	r.Register(BeforeAct, 1, "bad", func(ctx Ctx) Ctx {
		panic(errors.New("fail"))
	})
	r.Fire(BeforeAct, Ctx{})
	assert.NotEmpty(t, r.RecentErrors(5))
	r.ClearErrors()
	assert.Empty(t, r.RecentErrors(5))
}

func TestRegisteredListsInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(AfterAct, 5, "b", func(ctx Ctx) Ctx { return nil })
	r.Register(AfterAct, 1, "a", func(ctx Ctx) Ctx { return nil })
	assert.Equal(t, []string{"a", "b"}, r.Registered(AfterAct))
}
