package ws

type Hubs struct {
	Monitoring *MonitoringHub
	Student    *StudentHub
}

func NewHubs() *Hubs {
	return &Hubs{
		Monitoring: NewMonitoringHub(),
		Student:    NewStudentHub(),
	}
}

// Run starts both hub loops.
func (h *Hubs) Run() {
	go h.Monitoring.Run()
	go h.Student.Run()
}
