package dispatch

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Handler adapters", func() {
	var (
		snd *sender
		ctx *Context
	)

	ginkgo.BeforeEach(func() {
		snd = new(sender)
		ctx = &Context{sender: snd}
	})

	ginkgo.It("should let an event-only handler mutate the event", func() {
		h := EventOnly[battleWorld](func(a *attack) error {
			a.power++
			return nil
		})

		ev := attack{power: 13}
		Expect(h(&ev, nil, ctx)).To(Succeed())
		Expect(ev.power).To(Equal(14))
	})

	ginkgo.It("should pass the world to a world handler", func() {
		h := WithWorld(func(a *attack, w *battleWorld) error {
			w.hp = a.power
			return nil
		})

		ev := attack{power: 13}
		world := battleWorld{}
		Expect(h(&ev, &world, ctx)).To(Succeed())
		Expect(world.hp).To(Equal(13))
	})

	ginkgo.It("should pass the context to a context handler", func() {
		h := WithContext[battleWorld](func(a *attack, c *Context) error {
			SendImmediate(c, damage{amount: 17 + a.power})
			return nil
		})

		ev := attack{power: 13}
		Expect(h(&ev, nil, ctx)).To(Succeed())

		Expect(snd.immediate).To(HaveLen(1))
		Expect(snd.immediate[0].value).To(Equal(damage{amount: 30}))
	})

	ginkgo.It("should keep the full shape untouched", func() {
		h := WithWorldAndContext(
			func(a *attack, w *battleWorld, c *Context) error {
				w.hp = a.power
				SendDelayed(c, damage{amount: a.power})
				return nil
			})

		ev := attack{power: 13}
		world := battleWorld{}
		Expect(h(&ev, &world, ctx)).To(Succeed())

		Expect(world.hp).To(Equal(13))
		Expect(snd.delayed).To(HaveLen(1))
	})
})
