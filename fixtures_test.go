package jsonleaf_test

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "pages": [
      {
        "startedDateTime": "2023-05-23T23:44:27.587Z",
        "id": "page_2"
      }
    ],
    "entries": [
      {
        "pageref": "page_2",
        "request": {
          "method": "POST",
          "headers": [
            {
              "name": "user-agent",
              "value": {}
            },
            {
              "name": "users",
              "value": []
            }
          ],
          "queryString": [
            {
              "name": "done",
              "value": 0
            },
            {
              "name": "scrumb",
              "value": "t2351"
            }
          ],
          "cookies": [
            {
              "name": "AS",
              "path": "/",
              "secure": true
            }
        ]
        }
    }
    ]
  }
}`

var sampleTypes = []string{
	"0/log/version:string",
	"0/log/pages/0/startedDateTime:string",
	"0/log/pages/0/id:string",
	"0/log/entries/0/pageref:string",
	"0/log/entries/0/request/method:string",
	"0/log/entries/0/request/headers/0/name:string",
	"0/log/entries/0/request/headers/0/value:object",
	"0/log/entries/0/request/headers/1/name:string",
	"0/log/entries/0/request/headers/1/value:array",
	"0/log/entries/0/request/queryString/0/name:string",
	"0/log/entries/0/request/queryString/0/value:number",
	"0/log/entries/0/request/queryString/1/name:string",
	"0/log/entries/0/request/queryString/1/value:string",
	"0/log/entries/0/request/cookies/0/name:string",
	"0/log/entries/0/request/cookies/0/path:string",
	"0/log/entries/0/request/cookies/0/secure:true",
}
