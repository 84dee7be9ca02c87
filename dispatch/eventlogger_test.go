package dispatch

import (
	"bytes"
	"log"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("EventLogger", func() {
	ginkgo.It("should log each dispatched event with its outcome", func() {
		var buf bytes.Buffer

		s := NewScheduler[battleWorld]()
		s.AcceptHook(NewEventLogger(log.New(&buf, "", 0)))

		AddSystem(s, EventOnly[battleWorld](func(_ *attack) error {
			return nil
		}))

		world := battleWorld{}
		Send(s, attack{})
		Send(s, heal{})

		for s.Step(&world) {
		}

		Expect(buf.String()).To(ContainSubstring("dispatch.attack"))
		Expect(buf.String()).To(ContainSubstring("published"))
		Expect(buf.String()).To(ContainSubstring("dispatch.heal"))
		Expect(buf.String()).To(ContainSubstring("dropped"))
	})
})
