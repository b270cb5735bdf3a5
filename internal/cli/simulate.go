package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"netmonsim/internal/capture"
	"netmonsim/internal/config"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
)

// actionGap spaces scripted navigations and emails on the virtual clock.
const actionGap = 2 * time.Second

// settle is how long the clock runs past the last scripted action so its
// burst completes.
const settle = 2 * time.Second

// simulation is an offline capture run on a virtual clock.
type simulation struct {
	count    int
	duration time.Duration
	navigate []string
	open     []string
	click    []string
}

func (s *simulation) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&s.count, "count", "n", 20, "On-demand packets to generate before capture starts")
	f.DurationVarP(&s.duration, "duration", "d", 0, "Simulated capture time with the periodic generator running")
	f.StringSliceVar(&s.navigate, "navigate", nil, "Page URLs to visit, in order")
	f.StringSliceVar(&s.open, "open", nil, "Email senders to open, in order")
	f.StringSliceVar(&s.click, "click", nil, "Email link URLs to click, in order")
}

func (s *simulation) validate() error {
	if s.count < 0 {
		return fmt.Errorf("--count must not be negative")
	}
	if s.duration < 0 {
		return fmt.Errorf("--duration must not be negative")
	}
	return nil
}

// run executes the simulation and returns every packet emitted, in emission
// order, together with the app so callers can read its statistics.
func (s *simulation) run(cfg *config.Config, start time.Time) ([]models.Packet, *app) {
	clock := sched.NewVirtual(start)

	var emitted []models.Packet
	record := capture.PacketFunc(func(p models.Packet) { emitted = append(emitted, p) })
	a := newApp(cfg, clock, record)

	for i := 0; i < s.count; i++ {
		a.monitor.GeneratePacket()
	}

	at := time.Duration(0)
	schedule := func(f func()) {
		clock.AfterFunc(at, f)
		at += actionGap
	}
	for _, url := range s.navigate {
		schedule(func() { a.monitor.Navigate(url) })
	}
	for _, sender := range s.open {
		schedule(func() { a.monitor.OpenEmail(sender) })
	}
	for _, url := range s.click {
		suspicious := clickSuspicious(a, url)
		schedule(func() { a.monitor.EmailLinkClicked(url, suspicious) })
	}

	runFor := s.duration
	if at > 0 && at+settle > runFor {
		runFor = at + settle
	}
	if s.duration > 0 {
		a.monitor.StartCapture()
	}
	clock.Advance(runFor)
	a.monitor.StopCapture()

	return emitted, a
}

// clickSuspicious reports whether the scenario flags the linked page.
func clickSuspicious(a *app, url string) bool {
	src, ok := a.monitor.Catalog().Website(url)
	return ok && src.Suspicious
}
