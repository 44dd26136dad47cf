package prediction

// AdviceTable holds the fixed recommendations for each band.
type AdviceTable map[Band][]string

// For returns a copy of the advice for b.
func (a AdviceTable) For(b Band) []string {
	tips := a[b]
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

var cacaoAdvice = AdviceTable{
	BandLow: {
		"Realiza análisis de suelo y añade materia orgánica.",
		"Monitorea plagas y usa controles biológicos.",
		"Reemplaza plantas de bajo rendimiento y poda regularmente.",
		"Asegura un riego adecuado, especialmente en temporada seca.",
	},
	BandMedium: {
		"Aplica fertilizantes balanceados en varias etapas.",
		"Optimiza la recolección y fermentación para mejorar la calidad.",
		"Aplica controles preventivos de enfermedades.",
	},
	BandHigh: {
		"Mantén las prácticas actuales de manejo.",
		"Usa sensores y automatización para optimizar el riego.",
		"Capacita al personal en técnicas avanzadas de poscosecha.",
	},
}

var cafeAdvice = AdviceTable{
	BandLow: {
		"Revisa la calidad del suelo y añade nutrientes esenciales.",
		"Implementa técnicas de riego más eficientes.",
		"Realiza un control más riguroso de plagas y enfermedades.",
	},
	BandMedium: {
		"Optimiza las prácticas de fertilización.",
		"Ajusta el riego para maximizar la absorción de agua.",
		"Monitorea constantemente las condiciones climáticas.",
	},
	BandHigh: {
		"Mantén el nivel de producción actual.",
		"Considera técnicas avanzadas de recolección.",
		"Capacita al personal para mejorar la eficiencia.",
	},
}

var maizAdvice = AdviceTable{
	BandLow: {
		"Realiza un análisis de suelo y mejora su fertilidad con materia orgánica.",
		"Optimiza el control de plagas y enfermedades en las etapas iniciales.",
		"Revisa la eficiencia del sistema de riego y ajusta según las necesidades.",
	},
	BandMedium: {
		"Ajusta la densidad de siembra para maximizar el rendimiento.",
		"Realiza monitoreo constante de plagas para un control preventivo.",
		"Evalúa la posibilidad de utilizar tecnología para mejorar la eficiencia.",
	},
	BandHigh: {
		"Considera implementar sensores para optimizar el riego y la fertilización.",
		"Capacita al equipo en técnicas de cosecha para mejorar la calidad.",
		"Evalúa el mercado para posibles mejoras en la comercialización del maíz.",
	},
}
