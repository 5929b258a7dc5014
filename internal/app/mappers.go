package app

import (
	"strconv"
	"strings"

	"gangwongo/internal/domain"
	"gangwongo/internal/htmltext"
)

/********** alias registries (single source of truth) **********/

// intro field names differ per content type; first non-empty wins.
var introAliases = map[int]map[string][]string{
	domain.ContentTypeSite: {
		"infocenter":      {"infocenter"},
		"restdate":        {"restdate"},
		"useseason":       {"useseason"},
		"usetime":         {"usetime"},
		"parking":         {"parking"},
		"chkbabycarriage": {"chkbabycarriage"},
	},
	domain.ContentTypeLeisure: {
		"infocenter":      {"infocenterleports"},
		"restdate":        {"restdateleports"},
		"useseason":       {"openperiod"},
		"usetime":         {"usetimeleports"},
		"parking":         {"parkingleports"},
		"chkbabycarriage": {"chkbabycarriageleports"},
		"fee":             {"usefeeleports"},
	},
	domain.ContentTypeRestaurant: {
		"infocenter": {"infocenterfood"},
		"restdate":   {"restdatefood"},
		"usetime":    {"opentimefood"},
		"parking":    {"parkingfood"},
		"firstmenu":  {"firstmenu"},
		"treatmenu":  {"treatmenu"},
	},
	domain.ContentTypeLodging: {
		"tel":        {"infocenterlodging"},
		"checkin":    {"checkintime"},
		"checkout":   {"checkouttime"},
		"parking":    {"parkinglodging"},
		"facilities": {"subfacility"},
		"foodplace":  {"foodplace"},
		"scale":      {"scalelodging"},
	},
}

var roomAliases = map[string][]string{
	"title":     {"roomtitle"},
	"size":      {"roomsize2", "roomsize1"},
	"base":      {"roombasecount"},
	"max":       {"roommaxcount"},
	"priceLow":  {"roomoffseasonminfee1", "roomoffseasonminfee2"},
	"priceHigh": {"roompeakseasonminfee1", "roompeakseasonminfee2"},
}

// extra info entries whose name marks an admission fee
var feeInfoNames = []string{"입장료", "이용요금", "관람료"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the trimmed string at path or "". Numbers are formatted
// without exponent since the upstream sends ids both ways.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstStr(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// aliasStr: first non-empty string for a named alias set.
func aliasStr(m map[string]any, aliases map[string][]string, key string) string {
	return firstStr(m, aliases[key]...)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// getFloatFlexible: number from several paths (float64 or numeric string).
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// marker reports whether the upstream flag at key is exactly "Y".
func marker(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && s == "Y"
}

/********** list mappers **********/

func mapListItem(m map[string]any) domain.ListItem {
	return domain.ListItem{
		ContentID:      lookupStr(m, "contentid"),
		ContentTypeID:  lookupStr(m, "contenttypeid"),
		Title:          lookupStr(m, "title"),
		Addr:           lookupStr(m, "addr1"),
		FirstImage:     firstStr(m, "firstimage", "firstimage2"),
		MapX:           getFloatFlexible(m, "mapx"),
		MapY:           getFloatFlexible(m, "mapy"),
		Cat1:           lookupStr(m, "cat1"),
		Cat2:           lookupStr(m, "cat2"),
		Cat3:           lookupStr(m, "cat3"),
		Tel:            lookupStr(m, "tel"),
		EventStartDate: lookupStr(m, "eventstartdate"),
		EventEndDate:   lookupStr(m, "eventenddate"),
	}
}

func mapListItems(in []map[string]any) []domain.ListItem {
	out := make([]domain.ListItem, 0, len(in))
	for _, m := range in {
		out = append(out, mapListItem(m))
	}
	return out
}

func mapImages(in []map[string]any) []domain.Image {
	out := make([]domain.Image, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Image{
			SerialNum: lookupStr(m, "serialnum"),
			Name:      lookupStr(m, "imgname"),
			OriginURL: lookupStr(m, "originimgurl"),
			SmallURL:  lookupStr(m, "smallimageurl"),
		})
	}
	return out
}

/********** detail mappers **********/

// detailParts holds the three detail responses for one content id.
type detailParts struct {
	common map[string]any
	intro  map[string]any
	info   []map[string]any
}

// mapDetailBase fills the fields shared by every content type from the
// common response and leaves the type-specific ones empty.
func mapDetailBase(p detailParts, contentID string, contentTypeID int) domain.DetailInfo {
	c := p.common
	homepage := lookupStr(c, "homepage")
	overview := lookupStr(c, "overview")
	return domain.DetailInfo{
		ContentID:          orDefault(lookupStr(c, "contentid"), contentID),
		ContentTypeID:      orDefault(lookupStr(c, "contenttypeid"), strconv.Itoa(contentTypeID)),
		Cat1:               lookupStr(c, "cat1"),
		Cat2:               lookupStr(c, "cat2"),
		Cat3:               lookupStr(c, "cat3"),
		Title:              lookupStr(c, "title"),
		Overview:           overview,
		OverviewParagraphs: htmltext.Paragraphs(overview),
		Homepage:           homepage,
		HomepageLinks:      mapLinks(htmltext.Anchors(homepage)),
		FirstImage:         lookupStr(c, "firstimage"),
		FirstImage2:        lookupStr(c, "firstimage2"),
		Addr:               lookupStr(c, "addr1"),
		MapX:               getFloatFlexible(c, "mapx"),
		MapY:               getFloatFlexible(c, "mapy"),
		Tel:                lookupStr(c, "tel"),
		ExtraInfo:          mapExtraInfo(p.info),
		Rooms:              []domain.RoomInfo{},
	}
}

func mapLinks(in []htmltext.Anchor) []domain.Link {
	out := make([]domain.Link, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Link{Href: a.Href, Title: a.Title, Text: a.Text})
	}
	return out
}

func mapExtraInfo(in []map[string]any) []domain.ExtraInfo {
	out := make([]domain.ExtraInfo, 0, len(in))
	for _, m := range in {
		name := lookupStr(m, "infoname")
		text := htmltext.Plain(lookupStr(m, "infotext"))
		if name == "" && text == "" {
			continue
		}
		out = append(out, domain.ExtraInfo{
			SerialNum: lookupStr(m, "serialnum"),
			Name:      name,
			Text:      text,
		})
	}
	return out
}

func feeFromExtra(extra []domain.ExtraInfo) string {
	for _, e := range extra {
		for _, n := range feeInfoNames {
			if strings.Contains(e.Name, n) {
				return e.Text
			}
		}
	}
	return ""
}

func mapSiteDetail(p detailParts, contentID string, typeID int) domain.DetailInfo {
	d := mapDetailBase(p, contentID, typeID)
	a := introAliases[domain.ContentTypeSite]
	// intro only: the common tel is not an info center
	d.InfoCenter = aliasStr(p.intro, a, "infocenter")
	d.RestDate = aliasStr(p.intro, a, "restdate")
	d.UseSeason = aliasStr(p.intro, a, "useseason")
	d.UseTime = aliasStr(p.intro, a, "usetime")
	d.Parking = aliasStr(p.intro, a, "parking")
	d.ChkBabyCarriage = aliasStr(p.intro, a, "chkbabycarriage")
	d.EntranceFee = feeFromExtra(d.ExtraInfo)
	return d
}

func mapEventDetail(p detailParts, contentID string) domain.DetailInfo {
	d := mapDetailBase(p, contentID, domain.ContentTypeEvent)
	d.InfoCenter = orDefault(lookupStr(p.common, "tel"), lookupStr(p.intro, "sponsor1tel"))
	d.EntranceFee = orDefault(lookupStr(p.intro, "usetimefestival"), domain.FreeEntry)
	d.UseTime = orDefault(lookupStr(p.intro, "playtime"), domain.NoInfo)
	d.RestDate = ""
	d.EventStartDate = lookupStr(p.intro, "eventstartdate")
	d.EventEndDate = lookupStr(p.intro, "eventenddate")
	return d
}

func mapLeisureDetail(p detailParts, contentID string) domain.DetailInfo {
	d := mapDetailBase(p, contentID, domain.ContentTypeLeisure)
	a := introAliases[domain.ContentTypeLeisure]
	d.InfoCenter = aliasStr(p.intro, a, "infocenter")
	d.RestDate = aliasStr(p.intro, a, "restdate")
	d.UseSeason = aliasStr(p.intro, a, "useseason")
	d.UseTime = aliasStr(p.intro, a, "usetime")
	d.Parking = aliasStr(p.intro, a, "parking")
	d.ChkBabyCarriage = aliasStr(p.intro, a, "chkbabycarriage")
	d.EntranceFee = orDefault(aliasStr(p.intro, a, "fee"), feeFromExtra(d.ExtraInfo))
	return d
}

func mapRestaurantDetail(p detailParts, contentID string) domain.DetailInfo {
	d := mapDetailBase(p, contentID, domain.ContentTypeRestaurant)
	a := introAliases[domain.ContentTypeRestaurant]
	d.InfoCenter = aliasStr(p.intro, a, "infocenter")
	d.RestDate = aliasStr(p.intro, a, "restdate")
	d.UseTime = aliasStr(p.intro, a, "usetime")
	d.Parking = aliasStr(p.intro, a, "parking")
	d.FirstMenu = aliasStr(p.intro, a, "firstmenu")
	d.TreatMenu = aliasStr(p.intro, a, "treatmenu")
	return d
}

func mapLodgingDetail(p detailParts, contentID string) domain.DetailInfo {
	d := mapDetailBase(p, contentID, domain.ContentTypeLodging)
	a := introAliases[domain.ContentTypeLodging]
	d.Tel = orDefault(lookupStr(p.common, "tel"), aliasStr(p.intro, a, "tel"))
	d.InfoCenter = d.Tel
	d.CheckIn = orDefault(aliasStr(p.intro, a, "checkin"), domain.CheckNeeds)
	d.CheckOut = orDefault(aliasStr(p.intro, a, "checkout"), domain.CheckNeeds)
	d.Parking = orDefault(aliasStr(p.intro, a, "parking"), domain.NoInfo)
	d.Facilities = orDefault(aliasStr(p.intro, a, "facilities"), domain.NoInfo)
	d.FoodPlace = orDefault(aliasStr(p.intro, a, "foodplace"), domain.NoInfo)
	d.Scale = orDefault(aliasStr(p.intro, a, "scale"), domain.NoInfo)
	// detailInfo1 carries room records for lodging, not name/text pairs
	d.ExtraInfo = []domain.ExtraInfo{}
	d.Rooms = mapRooms(p.info)
	return d
}

func mapRooms(in []map[string]any) []domain.RoomInfo {
	out := make([]domain.RoomInfo, 0, len(in))
	for _, r := range in {
		images := make([]string, 0, 5)
		for i := 1; i <= 5; i++ {
			if u := lookupStr(r, "roomimg"+strconv.Itoa(i)); u != "" {
				images = append(images, u)
			}
		}
		out = append(out, domain.RoomInfo{
			Title:        aliasStr(r, roomAliases, "title"),
			Size:         aliasStr(r, roomAliases, "size"),
			BaseCapacity: aliasStr(r, roomAliases, "base"),
			MaxCapacity:  aliasStr(r, roomAliases, "max"),
			PriceLow:     aliasStr(r, roomAliases, "priceLow"),
			PriceHigh:    aliasStr(r, roomAliases, "priceHigh"),
			Amenities: domain.RoomAmenities{
				Bath:            marker(r, "roombathfacility"),
				AirConditioning: marker(r, "roomaircondition"),
				TV:              marker(r, "roomtv"),
				Internet:        marker(r, "roominternet"),
				Refrigerator:    marker(r, "roomrefrigerator"),
				Toiletries:      marker(r, "roomtoiletries"),
				Hairdryer:       marker(r, "roomhairdryer"),
			},
			Images: images,
		})
	}
	return out
}
