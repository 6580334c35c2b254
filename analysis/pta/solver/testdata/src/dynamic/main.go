package main

type getter interface {
	get() *int
}

type direct struct {
	p *int
}

func (d *direct) get() *int { return d.p }

type indirect struct {
	g getter
}

func (i indirect) get() *int { return i.g.get() }

var global *int

func use(p *int) {}

func apply(f func() *int) *int { return f() }

func main() {
	x := new(int) // @Alloc(x)
	y := new(int) // @Alloc(y)
	global = y

	var g getter = &direct{p: x}
	use(g.get()) // @PointsTo(x)
	var h getter = indirect{g: g}
	use(h.get()) // @PointsTo(x)
	if d, ok := h.(indirect); ok {
		use(d.g.get()) // @PointsTo(x)
	}

	use(apply(func() *int { return global })) // @PointsTo(y)
	z := new(int)                             // @Alloc(z)
	use(apply(func() *int { return z }))      // @PointsTo(z)

	c := make(chan *int, 1)
	c <- x
	use(<-c) // @PointsTo(x)

	m := map[string]*int{"y": y}
	use(m["y"]) // @PointsTo(y)
	for _, v := range m {
		use(v) // @PointsTo(y)
	}
}
