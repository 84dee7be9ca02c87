// Package monitoring turns live schedulers into a small web server so that
// external tools can watch queue depth, dispatch statistics, and process
// resources while the host application keeps stepping.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/edvall/cascade/dispatch"
)

// PortEnvVar names the environment variable (also honored from a .env file)
// that picks the monitor port when WithPortNumber is not called.
const PortEnvVar = "CASCADE_MONITOR_PORT"

// Monitor exposes registered schedulers over HTTP.
type Monitor struct {
	portNumber int
	url        string

	schedulersLock sync.Mutex
	schedulers     map[string]dispatch.Inspector

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		portNumber: portFromEnv(),
		schedulers: make(map[string]dispatch.Inspector),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScheduler registers a scheduler to be monitored under the given
// name.
func (m *Monitor) RegisterScheduler(name string, s dispatch.Inspector) {
	m.schedulersLock.Lock()
	defer m.schedulersLock.Unlock()

	m.schedulers[name] = s
}

// CreateProgressBar creates a new progress bar shown by the monitor.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        dispatch.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a finished bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts serving the monitoring API on the configured port, or a
// random one. It returns immediately; the server runs in its own goroutine.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/schedulers", m.listSchedulers)
	r.HandleFunc("/api/scheduler/{name}", m.schedulerDetails)
	r.HandleFunc("/api/queue/{name}", m.queueDepth)
	r.HandleFunc("/api/types/{name}", m.listTypes)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring dispatch with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor in the default browser. StartServer must
// have been called first.
func (m *Monitor) OpenDashboard() error {
	if m.url == "" {
		return fmt.Errorf("monitor server not started")
	}

	return browser.OpenURL(m.url)
}

func (m *Monitor) listSchedulers(w http.ResponseWriter, _ *http.Request) {
	m.schedulersLock.Lock()
	names := make([]string, 0, len(m.schedulers))
	for name := range m.schedulers {
		names = append(names, name)
	}
	m.schedulersLock.Unlock()

	sort.Strings(names)

	writeJSON(w, names)
}

type schedulerRsp struct {
	PendingEpochs int                           `json:"pending_epochs"`
	PendingEvents int                           `json:"pending_events"`
	StepCount     uint64                        `json:"step_count"`
	EventTypes    []string                      `json:"event_types"`
	Stats         map[string]dispatch.TypeStats `json:"stats"`
}

func (m *Monitor) schedulerDetails(w http.ResponseWriter, r *http.Request) {
	s := m.findSchedulerOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	rsp := schedulerRsp{
		PendingEpochs: s.PendingEpochs(),
		PendingEvents: s.PendingEvents(),
		StepCount:     s.StepCount(),
		EventTypes:    s.EventTypes(),
		Stats:         s.Stats(),
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(rsp)
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) queueDepth(w http.ResponseWriter, r *http.Request) {
	s := m.findSchedulerOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	fmt.Fprintf(w, "{\"pending_epochs\":%d,\"pending_events\":%d}",
		s.PendingEpochs(), s.PendingEvents())
}

func (m *Monitor) listTypes(w http.ResponseWriter, r *http.Request) {
	s := m.findSchedulerOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	writeJSON(w, s.EventTypes())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) findSchedulerOr404(
	w http.ResponseWriter,
	name string,
) dispatch.Inspector {
	m.schedulersLock.Lock()
	defer m.schedulersLock.Unlock()

	s, ok := m.schedulers[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}

	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

// portFromEnv reads the port from the environment, consulting a .env file
// when one is present. It returns 0 (random port) when unset or malformed.
func portFromEnv() int {
	_ = godotenv.Load()

	port, err := strconv.Atoi(os.Getenv(PortEnvVar))
	if err != nil {
		return 0
	}

	return port
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
