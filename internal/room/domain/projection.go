package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PriceFormatter renders prices with the grouping rules of a locale,
// e.g. 1500000 -> "1,500,000" for "en" and "1.500.000" for "vi".
type PriceFormatter struct {
	printer *message.Printer
}

func NewPriceFormatter(locale string) *PriceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &PriceFormatter{printer: message.NewPrinter(tag)}
}

func (f *PriceFormatter) Format(price float64) string {
	if price == math.Trunc(price) && math.Abs(price) < 1<<53 {
		return f.printer.Sprintf("%d", int64(price))
	}
	return f.printer.Sprintf("%.2f", price)
}

// ToRoomItem projects a room for the given user. The second result is false
// when uid has not saved the room.
func ToRoomItem(room *RoomEntity, uid string, prices *PriceFormatter) (RoomItem, bool) {
	if room == nil {
		return RoomItem{}, false
	}
	savedAt, ok := room.UserIDsSaved[uid]
	if !ok {
		return RoomItem{}, false
	}
	image := ""
	if len(room.Images) > 0 {
		image = room.Images[0]
	}
	return RoomItem{
		ID:           room.ID,
		Title:        room.Title,
		Price:        prices.Format(room.Price),
		Address:      room.Address,
		DistrictName: room.DistrictName,
		Image:        image,
		SavedTime:    savedAt,
	}, true
}

// ToRoomItems keeps the delivered order and skips rooms uid has not saved.
func ToRoomItems(rooms []*RoomEntity, uid string, prices *PriceFormatter) []RoomItem {
	items := make([]RoomItem, 0, len(rooms))
	for _, room := range rooms {
		if item, ok := ToRoomItem(room, uid, prices); ok {
			items = append(items, item)
		}
	}
	return items
}
