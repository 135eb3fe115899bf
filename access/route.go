package access

// Route is the purchase flow offered from an open paywall.
type Route struct {
	Kind RouteKind
	// TargetID is the series, video or creator id the flow buys.
	TargetID string
}

type RouteKind int

const (
	PurchaseSeries RouteKind = iota + 1
	PurchaseVideo
	PurchaseCreatorPass
)

func (k RouteKind) String() string {
	switch k {
	case PurchaseSeries:
		return "series"
	case PurchaseVideo:
		return "video"
	case PurchaseCreatorPass:
		return "creator pass"
	default:
		return "unknown"
	}
}

// Offer is what the paywall knows about the content being sold.
type Offer struct {
	VideoID    string
	CreatorID  string
	SeriesID   string
	SeriesType string
	Amount     float64
	Price      float64
}

// RouteFor picks a paid series first, then a priced video, then the creator pass.
func RouteFor(o Offer) Route {
	if o.SeriesID != "" && o.SeriesType != "" && o.SeriesType != "Free" {
		return Route{Kind: PurchaseSeries, TargetID: o.SeriesID}
	}

	amount := o.Amount
	if amount <= 0 {
		amount = o.Price
	}
	if amount > 0 {
		return Route{Kind: PurchaseVideo, TargetID: o.VideoID}
	}

	return Route{Kind: PurchaseCreatorPass, TargetID: o.CreatorID}
}
