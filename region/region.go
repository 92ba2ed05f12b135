// Package region 行政区划查询
// 省/市/区三级联动选择所用的内嵌数据表
package region

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed china_area.json
var rawData []byte

// Item 行政区划条目
type Item struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Children []Item `json:"children,omitempty"`
}

// 直辖市的市级与省级同名，区县直接挂在省级下
var municipalities = []string{"北京", "上海", "天津", "重庆"}

var (
	loadOnce    sync.Once
	tree        []Item
	provinces   []Item
	cityMap     map[string][]Item
	districtMap map[string][]Item
)

func load() {
	loadOnce.Do(func() {
		if err := json.Unmarshal(rawData, &tree); err != nil {
			// 内嵌数据损坏属于构建错误
			panic("region: invalid embedded dataset: " + err.Error())
		}
		data := tree

		cityMap = make(map[string][]Item)
		districtMap = make(map[string][]Item)

		for _, province := range data {
			provinces = append(provinces, Item{Code: province.Code, Name: province.Name})

			if isMunicipality(province.Name) {
				// 直辖市：children 里的分组直接展开为区县
				var districts []Item
				for _, group := range province.Children {
					for _, d := range group.Children {
						if !strings.Contains(d.Name, "市辖区") {
							districts = append(districts, Item{Code: d.Code, Name: d.Name})
						}
					}
				}
				cityMap[province.Name] = []Item{{Code: province.Code, Name: province.Name}}
				districtMap[province.Name] = districts
				continue
			}

			var cities []Item
			for _, city := range province.Children {
				if city.Name == "市辖区" {
					continue
				}
				cities = append(cities, Item{Code: city.Code, Name: city.Name})
				var districts []Item
				for _, d := range city.Children {
					if !strings.Contains(d.Name, "市辖区") {
						districts = append(districts, Item{Code: d.Code, Name: d.Name})
					}
				}
				districtMap[city.Name] = districts
			}
			cityMap[province.Name] = cities
		}
	})
}

// Provinces 省级列表
func Provinces() []Item {
	load()
	return provinces
}

// Cities 指定省份的城市列表
// 直辖市返回其自身作为唯一城市
func Cities(province string) []Item {
	load()
	return cityMap[province]
}

// Districts 指定城市的区县列表
func Districts(city string) []Item {
	load()
	return districtMap[city]
}

// Find 按区划代码查找条目
func Find(code string) (Item, bool) {
	load()
	return find(tree, code)
}

func find(items []Item, code string) (Item, bool) {
	for _, item := range items {
		if item.Code == code {
			return Item{Code: item.Code, Name: item.Name}, true
		}
		if found, ok := find(item.Children, code); ok {
			return found, true
		}
	}
	return Item{}, false
}

func isMunicipality(name string) bool {
	for _, m := range municipalities {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
