package main

import "fmt"

type node struct {
	next  *node
	label string
}

type labeler interface {
	Label() string
}

func (n *node) Label() string { return n.label }

func push(head *node, label string) *node {
	return &node{next: head, label: label}
}

func main() {
	var l *node
	for _, s := range []string{"a", "b"} {
		l = push(l, s)
	}
	var x labeler = l
	fmt.Println(x.Label())
}
