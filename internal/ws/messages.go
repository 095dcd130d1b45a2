package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/balance"
	"github.com/maryakemi70/HY4RES-WP2/internal/compare"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/service"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

// QueryPayload is sent with balance:query and impact:query. ID is echoed
// back in the reply.
type QueryPayload struct {
	ID        string `json:"id,omitempty"`
	StartDate string `json:"start_date"`
	Days      int    `json:"days"`
	Mode      string `json:"mode,omitempty"`
}

// Query converts the payload. An empty start_date means the first day with data.
func (p QueryPayload) Query() (service.Query, error) {
	q := service.Query{Days: p.Days, Mode: balance.Mode(p.Mode)}
	if p.StartDate != "" {
		start, err := model.ParseDate(p.StartDate)
		if err != nil {
			return service.Query{}, fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", service.ErrInvalidQuery, p.StartDate)
		}
		q.Start = start
	}
	return q, nil
}

// Server -> Client messages

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type IndicatorInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ImpactCategory string `json:"impact_category"`
	Unit           string `json:"unit"`
	Description    string `json:"description"`
}

type DataLoadedPayload struct {
	TimeRange  TimeRangeInfo   `json:"time_range"`
	Indicators []IndicatorInfo `json:"indicators"`
	Sources    []string        `json:"sources"`
}

type BalanceRowInfo struct {
	Timestamp       string  `json:"timestamp"`
	Demand          float64 `json:"demand"`
	Production      float64 `json:"production"`
	SelfConsumption float64 `json:"self_consumption"`
	ImportFromGrid  float64 `json:"import_from_grid"`
	ExportToGrid    float64 `json:"export_to_grid"`
}

type BalanceResultPayload struct {
	ID        string           `json:"id,omitempty"`
	StartDate string           `json:"start_date"`
	Days      int              `json:"days"`
	Mode      string           `json:"mode"`
	Rows      []BalanceRowInfo `json:"rows"`
	Summary   balance.Summary  `json:"summary"`
}

type ImpactRowInfo struct {
	Date                  string  `json:"date"`
	GridImportImpact      float64 `json:"grid_import_impact"`
	SelfConsumptionImpact float64 `json:"self_consumption_impact"`
	ExportImpact          float64 `json:"export_impact"`
	NetImpact             float64 `json:"net_impact"`
}

type IndicatorTableInfo struct {
	Indicator IndicatorInfo     `json:"indicator"`
	Rows      []ImpactRowInfo   `json:"rows"`
	Reference float64           `json:"reference"`
	Metrics   compare.Metrics   `json:"metrics"`
	Intensity compare.Intensity `json:"intensity"`
}

type ImpactResultPayload struct {
	ID             string               `json:"id,omitempty"`
	StartDate      string               `json:"start_date"`
	Days           int                  `json:"days"`
	Energy         balance.Summary      `json:"energy"`
	Indicators     []IndicatorTableInfo `json:"indicators"`
	MissingMixDays []string             `json:"missing_mix_days"`
}

type ProfileHourInfo struct {
	Hour             int     `json:"hour"`
	Demand           float64 `json:"demand"`
	Production       float64 `json:"production"`
	SelfConsumption  float64 `json:"self_consumption"`
	ImportFromGrid   float64 `json:"import_from_grid"`
	ExportToGrid     float64 `json:"export_to_grid"`
	ProductionFactor float64 `json:"production_factor"`
}

type ProfileResultPayload struct {
	ID        string            `json:"id,omitempty"`
	StartDate string            `json:"start_date"`
	Days      int               `json:"days"`
	PeakHour  int               `json:"peak_hour"`
	Hours     []ProfileHourInfo `json:"hours"`
}

type ErrorPayload struct {
	ID      string `json:"id,omitempty"`
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

// Message type constants
const (
	// Client -> Server
	TypeBalanceQuery = "balance:query"
	TypeImpactQuery  = "impact:query"
	TypeProfileQuery = "profile:query"

	// Server -> Client
	TypeDataLoaded     = "data:loaded"
	TypeBalanceResult  = "balance:result"
	TypeImpactResult   = "impact:result"
	TypeProfileResult  = "profile:result"
	TypeError          = "error"
	TypeServerShutdown = "server:shutdown"
)

const timestampLayout = "2006-01-02T15:04:05"

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func IndicatorInfoFor(ind model.Indicator) IndicatorInfo {
	meta := model.IndicatorCatalog[ind]
	return IndicatorInfo{
		ID:             string(ind),
		Title:          meta.Title,
		ImpactCategory: meta.ImpactCategory,
		Unit:           meta.Unit,
		Description:    meta.Description,
	}
}

func TimeRangeFromModel(tr model.TimeRange) TimeRangeInfo {
	return TimeRangeInfo{
		Start: tr.Start.Format(timestampLayout),
		End:   tr.End.Format(timestampLayout),
	}
}

func BalanceResultFromService(id string, r service.BalanceResult) BalanceResultPayload {
	rows := make([]BalanceRowInfo, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = BalanceRowInfo{
			Timestamp:       rec.Timestamp.Format(timestampLayout),
			Demand:          rec.Demand,
			Production:      rec.Production,
			SelfConsumption: rec.SelfConsumption,
			ImportFromGrid:  rec.GridImport,
			ExportToGrid:    rec.ExportToGrid,
		}
	}
	return BalanceResultPayload{
		ID:        id,
		StartDate: r.Start.Format(model.DateLayout),
		Days:      r.Days,
		Mode:      string(r.Mode),
		Rows:      rows,
		Summary:   r.Summary,
	}
}

func ImpactResultFromService(id string, r service.ImpactResult) ImpactResultPayload {
	tables := make([]IndicatorTableInfo, len(r.Indicators))
	for i, ind := range r.Indicators {
		rows := make([]ImpactRowInfo, len(r.Tables[ind]))
		for j, row := range r.Tables[ind] {
			rows[j] = ImpactRowInfo{
				Date:                  row.Date.Format(model.DateLayout),
				GridImportImpact:      row.GridImportImpact,
				SelfConsumptionImpact: row.SelfConsumptionImpact,
				ExportImpact:          row.ExportImpact,
				NetImpact:             row.NetImpact,
			}
		}
		tables[i] = IndicatorTableInfo{
			Indicator: IndicatorInfoFor(ind),
			Rows:      rows,
			Reference: r.Reference[ind],
		}
		if i < len(r.Metrics) {
			tables[i].Metrics = r.Metrics[i]
		}
		if i < len(r.Intensities) {
			tables[i].Intensity = r.Intensities[i]
		}
	}

	return ImpactResultPayload{
		ID:             id,
		StartDate:      r.Start.Format(model.DateLayout),
		Days:           r.Days,
		Energy:         r.Energy,
		Indicators:     tables,
		MissingMixDays: formatDates(r.MissingMixDays),
	}
}

func ProfileResultFromService(id string, r service.ProfileResult) ProfileResultPayload {
	hours := make([]ProfileHourInfo, len(r.Profile.Hours))
	for h, st := range r.Profile.Hours {
		hours[h] = ProfileHourInfo{
			Hour:             st.Hour,
			Demand:           st.Demand,
			Production:       st.Production,
			SelfConsumption:  st.SelfConsumption,
			ImportFromGrid:   st.GridImport,
			ExportToGrid:     st.ExportToGrid,
			ProductionFactor: r.Profile.ProductionFactor[h],
		}
	}
	return ProfileResultPayload{
		ID:        id,
		StartDate: r.Start.Format(model.DateLayout),
		Days:      r.Days,
		PeakHour:  r.Profile.PeakHour,
		Hours:     hours,
	}
}

func formatDates(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(model.DateLayout)
	}
	return out
}
