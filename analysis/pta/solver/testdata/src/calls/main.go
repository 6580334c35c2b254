package main

type T struct {
	f *int
}

func id(p *int) *int { return p }

func wrap(p *int) *T { return &T{f: p} }

func both(p, q *int) (*int, *int) { return q, p }

func use(p *int) {}

func main() {
	a := new(int) // @Alloc(a)
	b := new(int) // @Alloc(b)
	use(id(a))    // @PointsTo(a)
	use(id(b))    // @PointsTo(b)

	t1 := wrap(a)
	t2 := wrap(b)
	use(t1.f) // @PointsTo(a)
	use(t2.f) // @PointsTo(b)

	x, y := both(a, b)
	use(x) // @PointsTo(b)
	use(y) // @PointsTo(a)
}
