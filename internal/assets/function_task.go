package assets

import (
	"context"
	"sync"
)

// FunctionKind handles AsyncFunc values, plain func(context.Context,
// func(any)) values and *Func descriptors.
func FunctionKind() Kind {
	return Kind{
		Name: "function",
		Match: func(asset any) bool {
			switch a := asset.(type) {
			case AsyncFunc, func(context.Context, func(any)):
				return true
			case *Func:
				return a.Run != nil
			}
			return false
		},
		New: newFunctionTask,
	}
}

// FunctionTask runs a caller-supplied asynchronous step.
type FunctionTask struct {
	BaseTask
	run AsyncFunc
}

func newFunctionTask(_ Host, asset any) (Task, error) {
	switch a := asset.(type) {
	case *Func:
		return &FunctionTask{BaseTask: newBaseTask(asset, &a.Info, ""), run: a.Run}, nil
	case AsyncFunc:
		return &FunctionTask{BaseTask: newBaseTask(asset, nil, ""), run: a}, nil
	default:
		return &FunctionTask{BaseTask: newBaseTask(asset, nil, ""), run: asset.(func(context.Context, func(any)))}, nil
	}
}

// Start implements Task. Extra calls to done by the step are ignored.
func (t *FunctionTask) Start(ctx context.Context, done func(result any)) {
	var once sync.Once
	t.run(ctx, func(result any) {
		once.Do(func() { done(result) })
	})
}
