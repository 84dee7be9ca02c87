package dispatch

import (
	"runtime"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("ObservableQueue", func() {
	var q *ObservableQueue[int]

	ginkgo.BeforeEach(func() {
		q = NewObservableQueue[int]()
	})

	ginkgo.It("should drop pushes when nobody has ever subscribed", func() {
		q.push(3)
		q.push(12)

		Expect(q.items).To(BeEmpty())
	})

	ginkgo.It("should report nothing before the first push", func() {
		observer := q.subscribe()

		_, ok := observer.Next()
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("should replay pushes in order, exactly once", func() {
		observer := q.subscribe()

		q.push(3)
		q.push(12)
		q.push(2)

		for _, want := range []int{3, 12, 2} {
			got, ok := observer.Next()
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(want))
		}

		_, ok := observer.Next()
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("should not replay history to late subscribers", func() {
		early := q.subscribe()

		q.push(3)
		q.push(12)

		late := q.subscribe()

		q.push(1)

		got, ok := early.Next()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(3))

		got, ok = late.Next()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(1))
	})

	ginkgo.It("should trim only what every observer has consumed", func() {
		observers := make([]*Observer[int], 3)
		for i := range observers {
			observers[i] = q.subscribe()
		}

		q.push(3)
		q.push(12)
		q.push(2)

		first, _ := observers[0].Next()
		Expect(first).To(Equal(3))
		second, _ := observers[0].Next()
		Expect(second).To(Equal(12))

		first, _ = observers[1].Next()
		Expect(first).To(Equal(3))

		// The third observer has read nothing, so nothing can go.
		q.synchronize()
		Expect(q.items).To(HaveLen(3))

		third, _ := observers[0].Next()
		Expect(third).To(Equal(2))
		first, _ = observers[2].Next()
		Expect(first).To(Equal(3))

		q.synchronize()
		Expect(q.items).To(HaveLen(2))
	})

	ginkgo.It("should purge released observers and reclaim their items", func() {
		observer := q.subscribe()

		q.push(3)
		q.push(12)

		observer.Release()
		q.synchronize()

		Expect(q.observers).To(BeEmpty())
		Expect(q.items).To(BeEmpty())

		_, ok := observer.Next()
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("should purge collected observers after garbage collection", func() {
		observer := q.subscribe()
		_, _ = observer.Next()
		observer = nil

		q.push(3)

		Eventually(func() int {
			runtime.GC()
			q.synchronize()
			return len(q.observers)
		}).Should(BeZero())
		Expect(q.items).To(BeEmpty())
	})

	ginkgo.It("should fail closed once the queue itself is collected", func() {
		observer := q.subscribe()
		q.push(3)
		q = nil

		Eventually(func() bool {
			runtime.GC()
			_, ok := observer.Next()
			return ok
		}).Should(BeFalse())
	})

	ginkgo.It("should transform items in place with MapNext", func() {
		observer := q.subscribe()

		q.push(21)

		got, ok := MapNext(observer, func(v *int) int { return *v * 2 })
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(42))

		_, ok = MapNext(observer, func(v *int) int { return *v })
		Expect(ok).To(BeFalse())
	})
})
