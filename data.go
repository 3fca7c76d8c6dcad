package unitconv

import (
	"fmt"
	"math"
	"sync"
)

const TemperatureRuleName = "temperature"

// TemperatureRule converts through Celsius.
func TemperatureRule(value float64, from, to string) float64 {
	var celsius float64
	switch from {
	case "celsius":
		celsius = value
	case "fahrenheit":
		celsius = (value - 32) * 5 / 9
	case "kelvin":
		celsius = value - 273.15
	default:
		return math.NaN()
	}
	switch to {
	case "celsius":
		return celsius
	case "fahrenheit":
		return celsius*9/5 + 32
	case "kelvin":
		return celsius + 273.15
	default:
		return math.NaN()
	}
}

var rules = map[string]Rule{
	TemperatureRuleName: TemperatureRule,
}

// LookupRule resolves a rule stored by name in a catalog snapshot.
func LookupRule(name string) (Rule, error) {
	r, ok := rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	return r, nil
}

func withIcon(c Category, icon string) Category {
	c.Icon = icon
	return c
}

// DefaultCurrencyUnits is the static won based table used until live rates
// are known.
func DefaultCurrencyUnits() []Unit {
	return []Unit{
		{Key: "krw", Name: "대한민국 원 (KRW)", ToBase: 1},
		{Key: "usd", Name: "미국 달러 (USD)", ToBase: 1300},
		{Key: "eur", Name: "유로 (EUR)", ToBase: 1400},
		{Key: "jpy", Name: "일본 엔 (JPY)", ToBase: 9},
		{Key: "cny", Name: "중국 위안 (CNY)", ToBase: 180},
		{Key: "gbp", Name: "영국 파운드 (GBP)", ToBase: 1650},
	}
}

const CurrencyNote = "실시간 환율을 사용하려면 API 키가 필요합니다."

func defaultCategories() []Category {
	currency := withIcon(Linear("currency", "통화", DefaultCurrencyUnits()...), "💲")
	currency.Note = CurrencyNote

	return []Category{
		withIcon(Linear("length", "길이",
			Unit{"meter", "미터 (m)", 1},
			Unit{"kilometer", "킬로미터 (km)", 1000},
			Unit{"centimeter", "센티미터 (cm)", 0.01},
			Unit{"millimeter", "밀리미터 (mm)", 0.001},
			Unit{"mile", "마일 (mi)", 1609.344},
			Unit{"yard", "야드 (yd)", 0.9144},
			Unit{"foot", "피트 (ft)", 0.3048},
			Unit{"inch", "인치 (in)", 0.0254},
			Unit{"nauticalMile", "해리 (nmi)", 1852},
		), "📏"),
		withIcon(Linear("weight", "무게",
			Unit{"kilogram", "킬로그램 (kg)", 1},
			Unit{"gram", "그램 (g)", 0.001},
			Unit{"milligram", "밀리그램 (mg)", 0.000001},
			Unit{"ton", "톤 (t)", 1000},
			Unit{"pound", "파운드 (lb)", 0.453592},
			Unit{"ounce", "온스 (oz)", 0.0283495},
			Unit{"stone", "스톤 (st)", 6.35029},
		), "⚖️"),
		withIcon(Custom("temperature", "온도", TemperatureRuleName, TemperatureRule,
			Unit{Key: "celsius", Name: "섭씨 (°C)"},
			Unit{Key: "fahrenheit", Name: "화씨 (°F)"},
			Unit{Key: "kelvin", Name: "켈빈 (K)"},
		), "🌡️"),
		withIcon(Linear("acceleration", "가속",
			Unit{"meterPerSecondSquared", "미터/초² (m/s²)", 1},
			Unit{"kilometerPerHourSquared", "킬로미터/시² (km/h²)", 0.0000771605},
			Unit{"footPerSecondSquared", "피트/초² (ft/s²)", 0.3048},
			Unit{"gForce", "중력가속도 (g)", 9.80665},
			Unit{"galileo", "갈릴레오 (Gal)", 0.01},
		), "🚀"),
		withIcon(Linear("angle", "각도",
			Unit{"degree", "도 (°)", 1},
			Unit{"radian", "라디안 (rad)", 57.2957795},
			Unit{"gradian", "그라디안 (grad)", 0.9},
			Unit{"arcminute", "분 (′)", 0.0166667},
			Unit{"arcsecond", "초 (″)", 0.000277778},
		), "📐"),
		withIcon(Linear("data", "데이터 크기",
			Unit{"byte", "바이트 (B)", 1},
			Unit{"kilobyte", "킬로바이트 (KB)", 1024},
			Unit{"megabyte", "메가바이트 (MB)", 1048576},
			Unit{"gigabyte", "기가바이트 (GB)", 1073741824},
			Unit{"terabyte", "테라바이트 (TB)", 1099511627776},
			Unit{"petabyte", "페타바이트 (PB)", 1125899906842624},
			Unit{"bit", "비트 (bit)", 0.125},
			Unit{"kilobit", "킬로비트 (Kbit)", 128},
			Unit{"megabit", "메가비트 (Mbit)", 131072},
			Unit{"gigabit", "기가비트 (Gbit)", 134217728},
		), "💾"),
		withIcon(Linear("volume", "부피",
			Unit{"liter", "리터 (L)", 1},
			Unit{"milliliter", "밀리리터 (mL)", 0.001},
			Unit{"cubicMeter", "세제곱미터 (m³)", 1000},
			Unit{"cubicCentimeter", "세제곱센티미터 (cm³)", 0.001},
			Unit{"gallon", "갤런 (gal)", 3.78541},
			Unit{"quart", "쿼트 (qt)", 0.946353},
			Unit{"pint", "파인트 (pt)", 0.473176},
			Unit{"cup", "컵 (cup)", 0.236588},
			Unit{"fluidOunce", "액량온스 (fl oz)", 0.0295735},
			Unit{"tablespoon", "테이블스푼 (Tbsp)", 0.0147868},
			Unit{"teaspoon", "티스푼 (tsp)", 0.00492892},
		), "📦"),
		withIcon(Linear("speed", "속도",
			Unit{"meterPerSecond", "미터/초 (m/s)", 1},
			Unit{"kilometerPerHour", "킬로미터/시 (km/h)", 0.277778},
			Unit{"milePerHour", "마일/시 (mph)", 0.44704},
			Unit{"footPerSecond", "피트/초 (ft/s)", 0.3048},
			Unit{"knot", "노트 (knot)", 0.514444},
			Unit{"mach", "마하 (Mach)", 343},
		), "🚗"),
		withIcon(Linear("time", "시간",
			Unit{"second", "초 (s)", 1},
			Unit{"minute", "분 (min)", 60},
			Unit{"hour", "시간 (h)", 3600},
			Unit{"day", "일 (day)", 86400},
			Unit{"week", "주 (week)", 604800},
			Unit{"month", "월 (month)", 2629746},
			Unit{"year", "년 (year)", 31556952},
			Unit{"millisecond", "밀리초 (ms)", 0.001},
			Unit{"microsecond", "마이크로초 (μs)", 0.000001},
			Unit{"nanosecond", "나노초 (ns)", 0.000000001},
		), "⏰"),
		withIcon(Linear("pressure", "압력",
			Unit{"pascal", "파스칼 (Pa)", 1},
			Unit{"kilopascal", "킬로파스칼 (kPa)", 1000},
			Unit{"bar", "바 (bar)", 100000},
			Unit{"atmosphere", "기압 (atm)", 101325},
			Unit{"psi", "PSI (psi)", 6894.76},
			Unit{"torr", "토르 (Torr)", 133.322},
			Unit{"mmHg", "밀리미터 수은주 (mmHg)", 133.322},
		), "🔧"),
		withIcon(Linear("energy", "에너지",
			Unit{"joule", "줄 (J)", 1},
			Unit{"kilojoule", "킬로줄 (kJ)", 1000},
			Unit{"calorie", "칼로리 (cal)", 4.184},
			Unit{"kilocalorie", "킬로칼로리 (kcal)", 4184},
			Unit{"wattHour", "와트시 (Wh)", 3600},
			Unit{"kilowattHour", "킬로와트시 (kWh)", 3600000},
			Unit{"electronvolt", "전자볼트 (eV)", 1.60218e-19},
			Unit{"btu", "BTU (BTU)", 1055.06},
		), "⚡"),
		withIcon(Linear("power", "전력",
			Unit{"watt", "와트 (W)", 1},
			Unit{"kilowatt", "킬로와트 (kW)", 1000},
			Unit{"megawatt", "메가와트 (MW)", 1000000},
			Unit{"horsepower", "마력 (hp)", 745.7},
			Unit{"btuPerHour", "BTU/시 (BTU/h)", 0.293071},
		), "⚡"),
		withIcon(Linear("area", "면적",
			Unit{"squareMeter", "제곱미터 (m²)", 1},
			Unit{"squareKilometer", "제곱킬로미터 (km²)", 1000000},
			Unit{"squareCentimeter", "제곱센티미터 (cm²)", 0.0001},
			Unit{"squareMile", "제곱마일 (mi²)", 2589988.11},
			Unit{"squareYard", "제곱야드 (yd²)", 0.836127},
			Unit{"squareFoot", "제곱피트 (ft²)", 0.092903},
			Unit{"squareInch", "제곱인치 (in²)", 0.00064516},
			Unit{"hectare", "헥타르 (ha)", 10000},
			Unit{"acre", "에이커 (acre)", 4046.86},
			Unit{"pyeong", "평 (평)", 3.30579},
		), "🗺️"),
		withIcon(Linear("torque", "토크",
			Unit{"newtonMeter", "뉴턴미터 (N⋅m)", 1},
			Unit{"kilogramForceMeter", "킬로그램힘미터 (kgf⋅m)", 9.80665},
			Unit{"poundForceFoot", "파운드힘피트 (lbf⋅ft)", 1.35582},
			Unit{"poundForceInch", "파운드힘인치 (lbf⋅in)", 0.112985},
		), "🔩"),
		currency,
		withIcon(Linear("force", "힘",
			Unit{"newton", "뉴턴 (N)", 1},
			Unit{"kilonewton", "킬로뉴턴 (kN)", 1000},
			Unit{"kilogramForce", "킬로그램힘 (kgf)", 9.80665},
			Unit{"poundForce", "파운드힘 (lbf)", 4.44822},
			Unit{"dyne", "다인 (dyn)", 0.00001},
		), "🔨"),
	}
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(defaultCategories()...)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the built-in catalog. The value is shared; it is
// immutable so callers may keep it.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}
