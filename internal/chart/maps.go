package chart

// CollectMapNames lists the map names an option depends on, in first-seen
// order without duplicates. Geo-anchored scatter and lines series borrow the
// shared geo map.
func CollectMapNames(option any) []string {
	obj, ok := asObject(option)
	if !ok {
		return []string{}
	}
	var names []string
	seen := make(map[string]bool)
	add := func(v any) {
		name, ok := v.(string)
		if !ok || name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	geo, _ := asObject(obj["geo"])
	add(geo["map"])
	for _, s := range seriesList(obj["series"]) {
		series, ok := asObject(s)
		if !ok {
			continue
		}
		switch seriesType(series) {
		case SeriesMap:
			add(series["map"])
		case SeriesLines, SeriesScatter:
			if series["coordinateSystem"] == "geo" {
				add(geo["map"])
			}
		}
	}
	if names == nil {
		return []string{}
	}
	return names
}
