package domain

// Content type ids used by the tour API.
const (
	ContentTypeSite       = 12
	ContentTypeEvent      = 15
	ContentTypeLeisure    = 28
	ContentTypeLodging    = 32
	ContentTypeRestaurant = 39
)

// Placeholders used when the upstream omits a field.
const (
	NoInfo     = "정보 없음"
	CheckNeeds = "확인 필요"
	FreeEntry  = "무료"
)

type ListItem struct {
	ContentID      string   `json:"contentId"`
	ContentTypeID  string   `json:"contentTypeId"`
	Title          string   `json:"title"`
	Addr           string   `json:"addr"`
	FirstImage     string   `json:"firstImage,omitempty"`
	MapX           *float64 `json:"mapX,omitempty"`
	MapY           *float64 `json:"mapY,omitempty"`
	Cat1           string   `json:"cat1,omitempty"`
	Cat2           string   `json:"cat2,omitempty"`
	Cat3           string   `json:"cat3,omitempty"`
	Tel            string   `json:"tel,omitempty"`
	EventStartDate string   `json:"eventStartDate,omitempty"`
	EventEndDate   string   `json:"eventEndDate,omitempty"`
}

type ListPage struct {
	TotalCount int        `json:"totalCount"`
	Items      []ListItem `json:"items"`
}

// DetailInfo is the merged view of detailCommon1, detailIntro1 and detailInfo1.
// Fields that do not apply to a content type stay empty.
type DetailInfo struct {
	ContentID          string      `json:"contentId"`
	ContentTypeID      string      `json:"contentTypeId"`
	Cat1               string      `json:"cat1"`
	Cat2               string      `json:"cat2"`
	Cat3               string      `json:"cat3"`
	Title              string      `json:"title"`
	Overview           string      `json:"overview"`
	OverviewParagraphs []string    `json:"overviewParagraphs"`
	Homepage           string      `json:"homepage"`
	HomepageLinks      []Link      `json:"homepageLinks"`
	FirstImage         string      `json:"firstImage"`
	FirstImage2        string      `json:"firstImage2"`
	Addr               string      `json:"addr"`
	MapX               *float64    `json:"mapX,omitempty"`
	MapY               *float64    `json:"mapY,omitempty"`
	InfoCenter         string      `json:"infoCenter"`
	Tel                string      `json:"tel"`
	EntranceFee        string      `json:"entranceFee"`
	RestDate           string      `json:"restDate"`
	UseSeason          string      `json:"useSeason"`
	UseTime            string      `json:"useTime"`
	Parking            string      `json:"parking"`
	ChkBabyCarriage    string      `json:"chkBabyCarriage"`
	FirstMenu          string      `json:"firstMenu"`
	TreatMenu          string      `json:"treatMenu"`
	EventStartDate     string      `json:"eventStartDate"`
	EventEndDate       string      `json:"eventEndDate"`
	CheckIn            string      `json:"checkIn"`
	CheckOut           string      `json:"checkOut"`
	Facilities         string      `json:"facilities"`
	FoodPlace          string      `json:"foodPlace"`
	Scale              string      `json:"scale"`
	ExtraInfo          []ExtraInfo `json:"extraInfo"`
	Rooms              []RoomInfo  `json:"rooms"`
}

type ExtraInfo struct {
	SerialNum string `json:"serialNum"`
	Name      string `json:"name"`
	Text      string `json:"text"`
}

type Link struct {
	Href  string `json:"href"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type RoomInfo struct {
	Title        string        `json:"title"`
	Size         string        `json:"size"`
	BaseCapacity string        `json:"baseCapacity"`
	MaxCapacity  string        `json:"maxCapacity"`
	PriceLow     string        `json:"priceLow"`
	PriceHigh    string        `json:"priceHigh"`
	Amenities    RoomAmenities `json:"amenities"`
	Images       []string      `json:"images"`
}

type RoomAmenities struct {
	Bath            bool `json:"bath"`
	AirConditioning bool `json:"airConditioning"`
	TV              bool `json:"tv"`
	Internet        bool `json:"internet"`
	Refrigerator    bool `json:"refrigerator"`
	Toiletries      bool `json:"toiletries"`
	Hairdryer       bool `json:"hairdryer"`
}

type Image struct {
	SerialNum string `json:"serialNum"`
	Name      string `json:"name"`
	OriginURL string `json:"originUrl"`
	SmallURL  string `json:"smallUrl"`
}

// EventQuery parameterizes searchFestival1 lookups. Dates are YYYYMMDD.
type EventQuery struct {
	StartDate string
	EndDate   string
	Sigungu   string
	Page      int
}
