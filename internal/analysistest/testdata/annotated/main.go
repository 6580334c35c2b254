package main

func use(p *int) {}

func main() {
	a := new(int) // @Alloc(a)
	b := new(int) // @Alloc(b, c)
	use(a)        // @PointsTo(a)
	use(b)        // @PointsTo(b,c)
	use(nil)      // @PointsTo()
}
