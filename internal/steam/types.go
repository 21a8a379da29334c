package steam

// AppData 是 appdetails 响应中单个应用的已验证子集，所有可选字段均显式
// 建模，畸形条目在边界处被拒绝而不是把松散 map 传进内层。
type AppData struct {
	Type           string         `json:"type"`
	Name           string         `json:"name"`
	IsFree         bool           `json:"is_free"`
	PriceOverview  *PriceOverview `json:"price_overview"`
	CapsuleImage   string         `json:"capsule_image"`
	CapsuleImageV5 string         `json:"capsule_imagev5"`
	HeaderImage    string         `json:"header_image"`
	Categories     []Descriptor   `json:"categories"`
	Genres         []Descriptor   `json:"genres"`
}

// PriceOverview 仅保留展示所需的格式化价格。
type PriceOverview struct {
	FinalFormatted string `json:"final_formatted"`
}

// Descriptor 对应 categories/genres 数组里的描述文本。
type Descriptor struct {
	Description string `json:"description"`
}

// PriceLabel 返回格式化价格，未定价（免费或未上架）时为空串。
func (d *AppData) PriceLabel() string {
	if d == nil || d.PriceOverview == nil {
		return ""
	}
	return d.PriceOverview.FinalFormatted
}

// ChartEntry 是榜单接口返回的单个排名条目。
type ChartEntry struct {
	Rank             int `json:"rank"`
	AppID            int `json:"appid"`
	ConcurrentInGame int `json:"concurrent_in_game"`
	PeakInGame       int `json:"peak_in_game"`
}
