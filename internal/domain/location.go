package domain

type LocationType string

const (
	LocationTypeBuilding LocationType = "BUILDING"
	LocationTypeFloor    LocationType = "FLOOR"
)

type LocationID int64

type LocationNode struct {
	ID       LocationID
	Name     string
	Type     LocationType
	ParentID LocationID
}

func FloorsOf(nodes []LocationNode) []LocationNode {
	floors := make([]LocationNode, 0, len(nodes))
	for _, node := range nodes {
		if node.Type == LocationTypeFloor {
			floors = append(floors, node)
		}
	}

	return floors
}

type DeviceID int64

type Device struct {
	ID           DeviceID
	Hostname     string
	Connected    bool
	SerialNumber string
	ProductType  string
	IPAddress    string
	LocationID   LocationID
}

type DevicePage struct {
	Devices    []Device
	Page       int
	TotalPages int
	TotalCount int
}

// Last reports whether no further page should be requested.
func (p DevicePage) Last() bool {
	return p.Page >= p.TotalPages
}

func DeviceIDs(devices []Device) []DeviceID {
	ids := make([]DeviceID, 0, len(devices))
	for _, device := range devices {
		ids = append(ids, device.ID)
	}

	return ids
}

func HostnamesByID(devices []Device) map[DeviceID]string {
	hostnames := make(map[DeviceID]string, len(devices))
	for _, device := range devices {
		hostnames[device.ID] = device.Hostname
	}

	return hostnames
}

type DeviceQuery struct {
	Page          int
	Limit         int
	LocationID    LocationID
	ConnectedOnly bool
}
