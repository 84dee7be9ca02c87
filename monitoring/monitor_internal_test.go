package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/gorilla/mux"

	"github.com/edvall/cascade/dispatch"
)

type pulse struct{}

type nullWorld struct{}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		s *dispatch.Scheduler[nullWorld]
	)

	BeforeEach(func() {
		m = NewMonitor()
		s = dispatch.NewScheduler[nullWorld]()
		m.RegisterScheduler("main", s)
	})

	It("should list registered schedulers", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/schedulers", nil)

		m.listSchedulers(w, r)

		var names []string
		Expect(json.Unmarshal(w.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"main"}))
	})

	It("should report queue depth", func() {
		dispatch.Send(s, pulse{})
		dispatch.SendMany(s, []pulse{{}, {}})

		router := mux.NewRouter()
		router.HandleFunc("/api/queue/{name}", m.queueDepth)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/queue/main", nil)
		router.ServeHTTP(w, r)

		Expect(w.Body.String()).To(MatchJSON(
			`{"pending_epochs": 2, "pending_events": 3}`))
	})

	It("should 404 on unknown schedulers", func() {
		router := mux.NewRouter()
		router.HandleFunc("/api/queue/{name}", m.queueDepth)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/queue/nope", nil)
		router.ServeHTTP(w, r)

		Expect(w.Code).To(Equal(404))
	})

	It("should list the scheduler's event types", func() {
		dispatch.Send(s, pulse{})
		world := nullWorld{}
		s.Step(&world)

		router := mux.NewRouter()
		router.HandleFunc("/api/types/{name}", m.listTypes)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/types/main", nil)
		router.ServeHTTP(w, r)

		var types []string
		Expect(json.Unmarshal(w.Body.Bytes(), &types)).To(Succeed())
		Expect(types).To(ContainElement("monitoring.pulse"))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("drain", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/progress", nil)
		m.listProgressBars(w, r)

		var bars []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 3))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)

		w = httptest.NewRecorder()
		m.listProgressBars(w, r)
		Expect(w.Body.String()).To(MatchJSON(`[]`))
	})
})
