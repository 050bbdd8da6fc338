// Command gcptrdemo exercises the gcptr collector against a
// zero-initialized int array scenario followed by a set of A->B->C->A
// cyclic object graphs, optionally run concurrently across a caller-chosen
// number of goroutines.
package main

import (
	"flag"
	"fmt"
	"sync"

	"github.com/vic4key/mark-sweep-smart-pointers"
)

// A, B, and C form a three-way reference cycle: A's constructor allocates a
// B, whose constructor allocates a C that stores a handle straight back to
// the original A.
type A struct {
	P gcptr.Handle[B]
}

type B struct {
	P gcptr.Handle[C]
}

type C struct {
	P gcptr.Handle[A]
}

func (a *A) Destruct() { fmt.Printf("dest A %p\n", a) }
func (b *B) Destruct() { fmt.Printf("dest B %p\n", b) }
func (c *C) Destruct() { fmt.Printf("dest C %p\n", c) }

func newA(frame *gcptr.Frame, a *A, _ int) error {
	fmt.Println("const A")
	sess := frame.Session()

	var self gcptr.Handle[A]
	gcptr.FromPtr(&self, a, sess)
	self.AttachFrame(frame)

	gcptr.Init(&a.P, sess)
	return gcptr.Alloc(&a.P, sess, func(bFrame *gcptr.Frame, b *B, i int) error {
		return newB(bFrame, b, &self)
	})
}

func newB(frame *gcptr.Frame, b *B, root *gcptr.Handle[A]) error {
	fmt.Println("const B")
	sess := frame.Session()

	gcptr.Init(&b.P, sess)
	return gcptr.Alloc(&b.P, sess, func(cFrame *gcptr.Frame, c *C, i int) error {
		return newC(cFrame, c, root)
	})
}

func newC(frame *gcptr.Frame, c *C, root *gcptr.Handle[A]) error {
	fmt.Println("const C")
	sess := frame.Session()

	gcptr.Init(&c.P, sess)
	gcptr.Assign(&c.P, root)
	return nil
}

func body(collector *gcptr.Collector) {
	sess := gcptr.NewSession(collector)

	// Zero-init array scenario.
	var pi gcptr.Handle[int]
	gcptr.Init(&pi, sess)
	if err := gcptr.AllocArrayInit(&pi, sess, 4, gcptr.InitZero); err != nil {
		fmt.Println("alloc failed:", err)
		return
	}

	var iter gcptr.Handle[int]
	gcptr.Init(&iter, sess)

	var end gcptr.Handle[int]
	gcptr.Init(&end, sess)
	gcptr.Offset(&end, &pi, 4, sess)

	fmt.Println("initial values")
	for gcptr.Assign(&iter, &pi); gcptr.Less(&iter, &end); iter.Inc() {
		v, _ := iter.Deref()
		fmt.Println(*v)
	}

	i := 0
	for gcptr.Assign(&iter, &pi); gcptr.Less(&iter, &end); iter.Inc() {
		i++
		v, _ := iter.Deref()
		*v = i
	}

	fmt.Println("final values")
	for gcptr.Assign(&iter, &pi); gcptr.Less(&iter, &end); iter.Inc() {
		v, _ := iter.Deref()
		fmt.Println(*v)
	}

	pi.Detach()
	fmt.Println("detach pi")
	gcptr.Collect(collector) // iter still holds a reference to the array
	iter.Detach()
	fmt.Println("detach iter")
	gcptr.Collect(collector) // no references remain, array is freed here

	// Three-node cycle scenario: an array of 3 A objects, each seeding an
	// A->B->C->A cycle.
	var pa gcptr.Handle[A]
	gcptr.Init(&pa, sess)
	if err := gcptr.AllocArray(&pa, sess, 3, newA); err != nil {
		fmt.Println("alloc failed:", err)
		return
	}

	// ppa0..ppa2 are three extra root handles attached to the same array,
	// each an independent reason the array cannot yet be reclaimed.
	var ppa0, ppa1, ppa2 gcptr.Handle[A]
	gcptr.FromHandle(&ppa0, &pa, sess)
	gcptr.FromHandle(&ppa1, &pa, sess)
	gcptr.FromHandle(&ppa2, &pa, sess)

	fmt.Println("all attached")
	gcptr.Collect(collector) // 4 references to the array are active
	pa.Detach()
	fmt.Println("detach pa")
	gcptr.Collect(collector) // 3 references remain
	ppa0.Detach()
	fmt.Println("detach ppa0")
	gcptr.Collect(collector) // 2 references remain
	ppa1.Detach()
	fmt.Println("detach ppa1")
	gcptr.Collect(collector) // 1 reference remains
	ppa2.Detach()
	fmt.Println("detach ppa2")
	freed := gcptr.Collect(collector) // array and all 6 cyclic B and C sub-blocks freed here
	fmt.Printf("freed %d bytes\n", freed)
}

func main() {
	threads := flag.Int("threads", 1, "number of goroutines to run the demo body on")
	flag.Parse()

	n := *threads
	if n < 1 {
		n = 1
	}

	collector := gcptr.NewCollector()

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			body(collector)
		}()
	}
	wg.Wait()

	gcptr.Collect(collector)
	stats := gcptr.Stats(collector)
	fmt.Printf("final live bytes: %d (blocks=%d, collections=%d)\n",
		stats.LiveBytes, stats.BlockCount, stats.Collections)
}
