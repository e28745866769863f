// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson_test

import (
	"fmt"
	"log"

	"github.com/creachadair/rtjson"
	"github.com/creachadair/rtjson/ast"
	"github.com/creachadair/rtjson/observe"
)

func Example() {
	p := rtjson.New()

	p.SubscribeText(rtjson.MustParsePath("user.name")).Subscribe(observe.Funcs[string]{
		OnNext:     func(s string) { fmt.Printf("name delta %q\n", s) },
		OnComplete: func() { fmt.Println("name complete") },
	})
	p.SubscribeValue(rtjson.MustParsePath("user.tags")).Subscribe(observe.Funcs[ast.Value]{
		OnNext: func(v ast.Value) { fmt.Println("tags", v.JSON()) },
	})

	for _, chunk := range []string{`{"user":{"na`, `me":"Ja`, `ne","tags":["a",`, `"b"]}}`} {
		if err := p.Feed(chunk); err != nil {
			log.Fatalf("Feed: %v", err)
		}
	}
	fmt.Println("done", p.Done())
	// Output:
	// name delta "Ja"
	// name delta "ne"
	// name complete
	// tags ["a","b"]
	// done true
}

func ExampleParser_SubscribeText_array() {
	p := rtjson.New()
	r := observe.Record(p.SubscribeText(rtjson.Path{"id"}))
	if err := p.Feed(`[{"id":1,"x":true}, {"id":2}, {"y":3}]`); err != nil {
		log.Fatalf("Feed: %v", err)
	}
	fmt.Println(r.Values())
	// Output:
	// [[ 1 , 2 , ]]
}
