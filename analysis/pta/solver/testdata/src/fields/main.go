package main

type pair struct {
	left  *int
	right *int
}

type box struct {
	p     *pair
	inner pair
}

var global box

func use(p *int) {}

func main() {
	x := new(int) // @Alloc(x)
	y := new(int) // @Alloc(y)
	p := &pair{left: x}
	p.right = y
	b := box{p: p}
	use(b.p.left) // @PointsTo(x)
	use(p.right)  // @PointsTo(y)

	s := []*int{x, y}
	use(s[1]) // @PointsTo(x, y)

	b.inner = *p
	use(b.inner.right) // @PointsTo(y)

	global = b
	use(global.inner.left) // @PointsTo(x)
	use(global.p.right)    // @PointsTo(y)
}
