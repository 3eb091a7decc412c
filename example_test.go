package rxlite_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/xinjiayu/rxlite"
)

func ExampleCreate() {
	obs := rxlite.Create(func(emitter rxlite.Emitter[string]) error {
		emitter.OnNext("hello")
		emitter.OnNext("world")
		emitter.OnComplete()
		return nil
	})

	obs.SubscribeWithCallbacks(
		func(v string) { fmt.Println(v) },
		func(err error) { fmt.Println("error:", err) },
		func() { fmt.Println("done") },
	)
	// Output:
	// hello
	// world
	// done
}

func ExampleMap() {
	squares := rxlite.Map(rxlite.Range(1, 4), func(v int) (string, error) {
		return fmt.Sprintf("%d^2=%d", v, v*v), nil
	})

	squares.SubscribeWithCallbacks(func(v string) { fmt.Println(v) }, nil, nil)
	// Output:
	// 1^2=1
	// 2^2=4
	// 3^2=9
	// 4^2=16
}

func ExampleObservable_Filter() {
	rxlite.Just(5, 10, 15).
		Filter(func(v int) (bool, error) { return v > 7, nil }).
		SubscribeWithCallbacks(func(v int) { fmt.Println(v) }, nil, nil)
	// Output:
	// 10
	// 15
}

func ExampleFlatMap() {
	merged := rxlite.FlatMap(rxlite.Just(1, 2), func(v int) (rxlite.Observable[int], error) {
		return rxlite.Just(v*10, v*20), nil
	})

	values, err := merged.ToSlice(context.Background())
	fmt.Println(values, err)
	// Output:
	// [10 20 20 40] <nil>
}

func ExampleFlatMap_error() {
	failing := rxlite.FlatMap(rxlite.Just(1, 2, 3), func(v int) (rxlite.Observable[int], error) {
		if v == 2 {
			return rxlite.Observable[int]{}, errors.New("bad input")
		}
		return rxlite.Just(v), nil
	})

	values, err := failing.ToSlice(context.Background())
	fmt.Println(values, err)
	// Output:
	// [1] bad input
}

func ExampleObservable_ObserveOn() {
	pool := rxlite.NewComputationScheduler(4)
	defer pool.Close()

	values, err := rxlite.Range(0, 5).SubscribeOn(pool).ObserveOn(pool).ToSlice(context.Background())
	fmt.Println(values, err)
	// Output:
	// [0 1 2 3 4] <nil>
}
