package tenant

const prodHost = "https://ljsdstage.com"

var defaultUpstreams = []Upstream{
	{
		AppName: "AlgeniusNext",
		Dev: Endpoints{
			BaseURL:          "http://192.168.31.100:8080",
			FindSubscribeURL: "http://192.168.31.100:8080/adware/subscribe/find",
			LogoffURL:        "http://192.168.31.103:8080/adware/subscribe/delete",
		},
		Prod: Endpoints{
			BaseURL:          prodHost,
			FindSubscribeURL: prodHost + "/adware/subscribe/find",
			LogoffURL:        prodHost + "/adware/subscribe/delete",
		},
	},
	{
		AppName: "PicchatBox",
		Dev: Endpoints{
			BaseURL:          "http://192.168.31.100:8081",
			FindSubscribeURL: "http://192.168.31.100:8081/system/image/subscribe/find",
			LogoffURL:        "http://192.168.31.103:8081/system/image/subscribe/delete",
		},
		Prod: Endpoints{
			BaseURL:          prodHost,
			FindSubscribeURL: prodHost + "/api/system/image/subscribe/find",
			LogoffURL:        prodHost + "/api/system/image/subscribe/delete",
		},
	},
	{
		AppName: "TradeTutorVideo",
		Dev: Endpoints{
			BaseURL:          "http://192.168.31.100:8083",
			FindSubscribeURL: "http://192.168.31.100:8083/system/image/subscribe/find",
			LogoffURL:        "http://192.168.31.103:8083/system/image/subscribe/delete",
		},
		Prod: Endpoints{
			BaseURL:          prodHost,
			FindSubscribeURL: prodHost + "/video/system/image/subscribe/find",
			LogoffURL:        prodHost + "/video/system/image/subscribe/delete",
		},
	},
	{
		AppName: "AIMetaAid",
		Dev: Endpoints{
			BaseURL:          "http://192.168.31.100:8084",
			FindSubscribeURL: "http://192.168.31.100:8084/system/image/subscribe/find",
			LogoffURL:        "http://192.168.31.103:8084/system/image/subscribe/delete",
		},
		Prod: Endpoints{
			BaseURL:          prodHost,
			FindSubscribeURL: prodHost + "/aiMetaMid/system/image/subscribe/find",
			LogoffURL:        prodHost + "/aiMetaMid/system/image/subscribe/delete",
		},
	},
	{
		AppName: "Wallet-Backstage",
		Dev: Endpoints{
			BaseURL:          "http://localhost:8085",
			FindSubscribeURL: "http://192.168.31.100:8085/system/image/subscribe/find",
			LogoffURL:        "http://192.168.31.103:8085/system/image/subscribe/delete",
		},
		Prod: Endpoints{
			BaseURL:          prodHost,
			FindSubscribeURL: prodHost + "/wallet/system/image/subscribe/find",
			LogoffURL:        prodHost + "/wallet/system/image/subscribe/delete",
		},
	},
}
