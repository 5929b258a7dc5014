package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"gangwongo/internal/domain"
	"gangwongo/internal/shared"
)

// Upstream operations.
const (
	opAreaList     = "areaBasedList1"
	opDetailCommon = "detailCommon1"
	opDetailIntro  = "detailIntro1"
	opDetailInfo   = "detailInfo1"
	opDetailImage  = "detailImage1"
	opFestival     = "searchFestival1"
	opStay         = "searchStay1"
)

const (
	defaultEventStart = "20240101"
	leisureCat1       = "A03"
)

// Aggregator turns domain queries into one or more tour API calls and
// normalizes the results. It holds no mutable state.
//
// List sweeps (AreaList, FestivalList, LodgingList) log failures and return
// empty results; category fan-outs drop failed branches; detail lookups
// return errors.
type Aggregator struct {
	api      domain.TourAPI
	tax      *domain.Taxonomy
	areaCode string
	pageSize int
	limit    int
}

func NewAggregator(api domain.TourAPI, tax *domain.Taxonomy, cfg shared.TourConfig) *Aggregator {
	if tax == nil {
		tax = domain.DefaultTaxonomy()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	area := cfg.AreaCode
	if area <= 0 {
		area = 32
	}
	return &Aggregator{
		api:      api,
		tax:      tax,
		areaCode: strconv.Itoa(area),
		pageSize: pageSize,
		limit:    cfg.FanoutLimit,
	}
}

// areaParams is the base parameter set of every regional list call.
func (a *Aggregator) areaParams(page int) url.Values {
	if page <= 0 {
		page = 1
	}
	v := url.Values{}
	v.Set("areaCode", a.areaCode)
	v.Set("listYN", "Y")
	v.Set("pageNo", strconv.Itoa(page))
	return v
}

func setIf(v url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(key, val)
	}
}

/********** A. exhaustive pagination **********/

// AreaList sweeps areaBasedList1 page by page until a short or empty page.
// On any failure the partial result is dropped and an empty slice returned.
func (a *Aggregator) AreaList(ctx context.Context, sigungu string) []domain.ListItem {
	acc := []domain.ListItem{}
	for page := 1; ; page++ {
		p := a.areaParams(page)
		p.Set("numOfRows", strconv.Itoa(a.pageSize))
		setIf(p, "sigunguCode", sigungu)

		rp, err := a.api.Get(ctx, opAreaList, p)
		if err != nil {
			log.Error().Err(err).Str("op", "area_list").Str("sigungu", sigungu).Int("page", page).Msg("area list sweep failed")
			return []domain.ListItem{}
		}
		if len(rp.Items) == 0 {
			break
		}
		acc = append(acc, mapListItems(rp.Items)...)
		log.Debug().Str("op", "area_list").Int("page", page).Int("fetched", len(rp.Items)).Int("total", len(acc)).Msg("page loaded")

		if len(rp.Items) < a.pageSize {
			break
		}
	}
	return acc
}

/********** B. category fan-out **********/

// SeasonTourList fans out over the season taxonomy. An empty season selects
// all seasons.
func (a *Aggregator) SeasonTourList(ctx context.Context, season string, page int) []domain.ListItem {
	return a.categoryList(ctx, "season_tour", a.tax.Season.Resolve(season), page)
}

// NatureTourList fans out over the nature taxonomy (ocean, mountain, river, forest).
func (a *Aggregator) NatureTourList(ctx context.Context, category string, page int) []domain.ListItem {
	return a.categoryList(ctx, "nature_tour", a.tax.Nature.Resolve(category), page)
}

// CultureTourList fans out over museum, historic, religion and etc sites.
func (a *Aggregator) CultureTourList(ctx context.Context, category string, page int) []domain.ListItem {
	return a.categoryList(ctx, "culture_tour", a.tax.Culture.Resolve(category), page)
}

// SeasonLeisureList uses the leisure (A03) part of the season taxonomy.
func (a *Aggregator) SeasonLeisureList(ctx context.Context, season string, page int) []domain.ListItem {
	var triples []domain.Triple
	for _, t := range a.tax.Season.Resolve(season) {
		if t.Cat1 == leisureCat1 {
			triples = append(triples, t)
		}
	}
	return a.categoryList(ctx, "season_leisure", triples, page)
}

func (a *Aggregator) categoryList(ctx context.Context, op string, triples []domain.Triple, page int) []domain.ListItem {
	if len(triples) == 0 {
		log.Warn().Str("op", op).Msg("no category triples for selector")
		return []domain.ListItem{}
	}
	res, _ := fanOut(ctx, op, Tolerant, a.limit, len(triples), func(ctx context.Context, i int) ([]domain.ListItem, error) {
		t := triples[i]
		p := a.areaParams(page)
		p.Set("cat1", t.Cat1)
		p.Set("cat2", t.Cat2)
		p.Set("cat3", t.Cat3)
		rp, err := a.api.Get(ctx, opAreaList, p)
		if err != nil {
			return nil, fmt.Errorf("cat1=%s cat2=%s cat3=%s: %w", t.Cat1, t.Cat2, t.Cat3, err)
		}
		return mapListItems(rp.Items), nil
	})

	out := []domain.ListItem{}
	for _, items := range res {
		out = append(out, items...)
	}
	log.Debug().Str("op", op).Int("branches", len(triples)).Int("items", len(out)).Msg("category fan-out done")
	return out
}

/********** C. count-then-fetch **********/

func (a *Aggregator) eventParams(q domain.EventQuery, page int) url.Values {
	p := a.areaParams(page)
	p.Set("eventStartDate", orDefault(strings.TrimSpace(q.StartDate), defaultEventStart))
	setIf(p, "eventEndDate", q.EndDate)
	setIf(p, "sigunguCode", q.Sigungu)
	return p
}

// FestivalList asks searchFestival1 for the total count, then fetches that
// many rows in one page. Failures yield an empty page.
func (a *Aggregator) FestivalList(ctx context.Context, q domain.EventQuery) domain.ListPage {
	empty := domain.ListPage{TotalCount: 0, Items: []domain.ListItem{}}

	countQ := a.eventParams(q, 1)
	countQ.Set("numOfRows", "1")
	rp, err := a.api.Get(ctx, opFestival, countQ)
	if err != nil {
		log.Error().Err(err).Str("op", "festival_list").Msg("festival count request failed")
		return empty
	}
	if !rp.HasBody {
		log.Warn().Str("op", "festival_list").Msg("festival count response has no body")
		return empty
	}
	total := rp.TotalCount
	if total <= 0 {
		return empty
	}

	full := a.eventParams(q, 1)
	full.Set("numOfRows", strconv.Itoa(total))
	rp, err = a.api.Get(ctx, opFestival, full)
	if err != nil {
		log.Error().Err(err).Str("op", "festival_list").Int("total", total).Msg("festival fetch failed")
		return empty
	}
	if !rp.HasBody {
		log.Warn().Str("op", "festival_list").Msg("festival response has no body")
		return empty
	}
	return domain.ListPage{TotalCount: total, Items: mapListItems(rp.Items)}
}

/********** single-request lists **********/

// PerformanceEventList lists performances and events (cat2 A0208).
func (a *Aggregator) PerformanceEventList(ctx context.Context, q domain.EventQuery) ([]domain.ListItem, error) {
	p := a.eventParams(q, q.Page)
	p.Set("cat1", "A02")
	p.Set("cat2", "A0208")
	rp, err := a.api.Get(ctx, opFestival, p)
	if err != nil {
		return nil, fmt.Errorf("performance list: %w", err)
	}
	return mapListItems(rp.Items), nil
}

func (a *Aggregator) RestaurantList(ctx context.Context, page, rows int) (domain.ListPage, error) {
	p := a.areaParams(page)
	p.Set("contentTypeId", strconv.Itoa(domain.ContentTypeRestaurant))
	p.Set("cat1", "A05")
	p.Set("cat2", "A0502")
	if rows > 0 {
		p.Set("numOfRows", strconv.Itoa(rows))
	}
	rp, err := a.api.Get(ctx, opAreaList, p)
	if err != nil {
		return domain.ListPage{}, fmt.Errorf("restaurant list: %w", err)
	}
	return domain.ListPage{TotalCount: rp.TotalCount, Items: mapListItems(rp.Items)}, nil
}

// LeisureList returns one page of leisure sites for a sigungu. A response
// without a body, or a quota notice in place of one, counts as empty.
func (a *Aggregator) LeisureList(ctx context.Context, sigungu string, page int) (domain.ListPage, error) {
	p := a.areaParams(page)
	setIf(p, "sigunguCode", sigungu)
	p.Set("contentTypeId", strconv.Itoa(domain.ContentTypeLeisure))
	p.Set("cat1", leisureCat1)
	rp, err := a.api.Get(ctx, opAreaList, p)
	if errors.Is(err, domain.ErrQuotaExceeded) {
		log.Warn().Err(err).Str("op", "leisure_list").Str("sigungu", sigungu).Msg("quota exceeded; returning empty page")
		return domain.ListPage{TotalCount: 0, Items: []domain.ListItem{}}, nil
	}
	if err != nil {
		return domain.ListPage{}, fmt.Errorf("leisure list: %w", err)
	}
	if !rp.HasBody {
		return domain.ListPage{TotalCount: 0, Items: []domain.ListItem{}}, nil
	}
	return domain.ListPage{TotalCount: rp.TotalCount, Items: mapListItems(rp.Items)}, nil
}

// LodgingList lists stays from searchStay1; failures yield an empty slice.
func (a *Aggregator) LodgingList(ctx context.Context, page, rows int) []domain.ListItem {
	p := a.areaParams(page)
	if rows > 0 {
		p.Set("numOfRows", strconv.Itoa(rows))
	}
	rp, err := a.api.Get(ctx, opStay, p)
	if err != nil {
		log.Error().Err(err).Str("op", "lodging_list").Msg("lodging list failed")
		return []domain.ListItem{}
	}
	return mapListItems(rp.Items)
}

func (a *Aggregator) TourImages(ctx context.Context, contentID string) ([]domain.Image, error) {
	p := url.Values{}
	p.Set("contentId", contentID)
	p.Set("imageYN", "Y")
	p.Set("subImageYN", "Y")
	rp, err := a.api.Get(ctx, opDetailImage, p)
	if err != nil {
		return nil, fmt.Errorf("images %s: %w", contentID, err)
	}
	return mapImages(rp.Items), nil
}

/********** D. detail composition **********/

// TourDetail composes a general site detail. typeID <= 0 means 12.
func (a *Aggregator) TourDetail(ctx context.Context, contentID string, typeID int) (domain.DetailInfo, error) {
	if typeID <= 0 {
		typeID = domain.ContentTypeSite
	}
	p, err := a.fetchDetail(ctx, "tour_detail", contentID, typeID)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapSiteDetail(p, contentID, typeID), nil
}

func (a *Aggregator) FestivalDetail(ctx context.Context, contentID string) (domain.DetailInfo, error) {
	p, err := a.fetchDetail(ctx, "festival_detail", contentID, domain.ContentTypeEvent)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapEventDetail(p, contentID), nil
}

// PerformanceEventDetail shares content type 15 and its mapping with festivals.
func (a *Aggregator) PerformanceEventDetail(ctx context.Context, contentID string) (domain.DetailInfo, error) {
	p, err := a.fetchDetail(ctx, "performance_detail", contentID, domain.ContentTypeEvent)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapEventDetail(p, contentID), nil
}

func (a *Aggregator) LeisureDetail(ctx context.Context, contentID string) (domain.DetailInfo, error) {
	p, err := a.fetchDetail(ctx, "leisure_detail", contentID, domain.ContentTypeLeisure)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapLeisureDetail(p, contentID), nil
}

func (a *Aggregator) RestaurantDetail(ctx context.Context, contentID string) (domain.DetailInfo, error) {
	p, err := a.fetchDetail(ctx, "restaurant_detail", contentID, domain.ContentTypeRestaurant)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapRestaurantDetail(p, contentID), nil
}

func (a *Aggregator) LodgingDetail(ctx context.Context, contentID string) (domain.DetailInfo, error) {
	p, err := a.fetchDetail(ctx, "lodging_detail", contentID, domain.ContentTypeLodging)
	if err != nil {
		return domain.DetailInfo{}, err
	}
	return mapLodgingDetail(p, contentID), nil
}

// Detail dispatches on content type id.
func (a *Aggregator) Detail(ctx context.Context, contentID string, typeID int) (domain.DetailInfo, error) {
	switch typeID {
	case domain.ContentTypeEvent:
		return a.FestivalDetail(ctx, contentID)
	case domain.ContentTypeLeisure:
		return a.LeisureDetail(ctx, contentID)
	case domain.ContentTypeLodging:
		return a.LodgingDetail(ctx, contentID)
	case domain.ContentTypeRestaurant:
		return a.RestaurantDetail(ctx, contentID)
	default:
		return a.TourDetail(ctx, contentID, typeID)
	}
}

// fetchDetail issues the common, intro and info requests concurrently. Any
// failure fails the whole lookup.
func (a *Aggregator) fetchDetail(ctx context.Context, op, contentID string, typeID int) (detailParts, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return detailParts{}, fmt.Errorf("%s: empty content id: %w", op, domain.ErrNotFound)
	}
	typ := strconv.Itoa(typeID)

	common := url.Values{}
	common.Set("contentId", contentID)
	common.Set("contentTypeId", typ)
	for _, k := range []string{"defaultYN", "firstImageYN", "areacodeYN", "catcodeYN", "addrinfoYN", "mapinfoYN", "overviewYN"} {
		common.Set(k, "Y")
	}
	typed := url.Values{}
	typed.Set("contentId", contentID)
	typed.Set("contentTypeId", typ)

	calls := []struct {
		op     string
		params url.Values
	}{
		{opDetailCommon, common},
		{opDetailIntro, typed},
		{opDetailInfo, typed},
	}
	pages, err := fanOut(ctx, op, Strict, 0, len(calls), func(ctx context.Context, i int) (domain.RawPage, error) {
		return a.api.Get(ctx, calls[i].op, calls[i].params)
	})
	if err != nil {
		return detailParts{}, fmt.Errorf("%s %s: %w", op, contentID, err)
	}
	if len(pages[0].Items) == 0 {
		return detailParts{}, fmt.Errorf("%s %s: no common data: %w", op, contentID, domain.ErrNotFound)
	}

	p := detailParts{common: pages[0].Items[0], intro: map[string]any{}, info: pages[2].Items}
	if len(pages[1].Items) > 0 {
		p.intro = pages[1].Items[0]
	}
	return p, nil
}
